// Package orders keeps a local ledger of purchase attempts.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"partsbot/internal/models"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("order not found")

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Ledger records purchase attempts in sqlite.
type Ledger struct {
	db *gorm.DB
}

// Open opens (and migrates) the sqlite database at dsn.
func Open(dsn string) (*Ledger, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create ledger dir: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if err := db.AutoMigrate(&models.OrderRecord{}); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the underlying connection pool.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Entry is what callers report about one purchase attempt.
type Entry struct {
	Supplier     string
	ProductCode  string
	Quantity     int
	Observations string
	Forced       bool
	Status       models.OrderStatus
	PortalID     *string
	Signal       interface{}
	Err          error
	RequestID    string
	Duration     time.Duration
}

// Record stores e and returns the persisted row.
func (l *Ledger) Record(ctx context.Context, e Entry) (*models.OrderRecord, error) {
	rec := &models.OrderRecord{
		OrderUUID:    uuid.NewString(),
		Supplier:     e.Supplier,
		ProductCode:  e.ProductCode,
		Quantity:     e.Quantity,
		Observations: e.Observations,
		Forced:       e.Forced,
		Status:       e.Status,
		PortalID:     e.PortalID,
		RequestID:    e.RequestID,
		Duration:     e.Duration.Milliseconds(),
	}
	if e.Err != nil {
		rec.ErrorMsg = e.Err.Error()
	}
	if e.Signal != nil {
		raw, err := json.Marshal(e.Signal)
		if err != nil {
			return nil, fmt.Errorf("encode signal snapshot: %w", err)
		}
		rec.Signal = datatypes.JSON(raw)
	}

	if err := l.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}
	return rec, nil
}

// Filter narrows List.
type Filter struct {
	ProductCode string
	Status      models.OrderStatus
	Limit       int
}

// List returns the newest records first.
func (l *Ledger) List(ctx context.Context, f Filter) ([]models.OrderRecord, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	q := l.db.WithContext(ctx).Model(&models.OrderRecord{})
	if f.ProductCode != "" {
		q = q.Where("product_code = ?", f.ProductCode)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var out []models.OrderRecord
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// Get returns the record with the given public id.
func (l *Ledger) Get(ctx context.Context, id string) (*models.OrderRecord, error) {
	var rec models.OrderRecord
	err := l.db.WithContext(ctx).Where("order_uuid = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &rec, nil
}

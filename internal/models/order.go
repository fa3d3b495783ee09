package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus is the ledger state of a purchase attempt
type OrderStatus string

const (
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusRejected  OrderStatus = "REJECTED" // stopped by the stock gate before any UI write
)

// OrderRecord is one purchase attempt against a supplier portal
type OrderRecord struct {
	ID           uint           `gorm:"primaryKey" json:"-"`
	OrderUUID    string         `gorm:"uniqueIndex;not null" json:"id"`
	Supplier     string         `gorm:"index;not null" json:"supplier"`
	ProductCode  string         `gorm:"index;not null" json:"codigo"`
	Quantity     int            `gorm:"not null" json:"cantidad"`
	Observations string         `json:"observaciones"`
	Forced       bool           `gorm:"default:false" json:"forced"`
	Status       OrderStatus    `gorm:"index;not null" json:"status"`
	PortalID     *string        `json:"pedidoId"`     // order id returned by the portal, if observed
	Signal       datatypes.JSON `json:"baAtBuy"`      // stock signal read before buying
	ErrorMsg     string         `json:"error,omitempty"`
	RequestID    string         `json:"requestId,omitempty"`
	Duration     int64          `json:"durationMs"` // milliseconds
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for OrderRecord model
func (OrderRecord) TableName() string {
	return "orders"
}

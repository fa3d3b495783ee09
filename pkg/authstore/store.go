// Package authstore persists portal session cookies per supplier so a new
// browser context can skip the login form.
package authstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ErrNoState is returned by Load when nothing has been saved for a supplier.
var ErrNoState = errors.New("no saved auth state")

// Cookie mirrors the fields a browser needs to restore a cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // seconds since epoch, <= 0 for session cookies
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// State is the blob stored for one supplier.
type State struct {
	Supplier string    `json:"supplier"`
	SavedAt  time.Time `json:"savedAt"`
	Cookies  []Cookie  `json:"cookies"`
}

// Live returns the cookies that have not expired at now.
func (s *State) Live(now time.Time) []Cookie {
	out := make([]Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if c.Expires > 0 && float64(now.Unix()) >= c.Expires {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Store reads and writes State files under a directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (s *Store) path(supplier string) string {
	name := unsafeName.ReplaceAllString(supplier, "_")
	if name == "" {
		name = "default"
	}
	return filepath.Join(s.dir, name+".json")
}

// Load returns the saved state for supplier or ErrNoState.
func (s *Store) Load(supplier string) (*State, error) {
	data, err := os.ReadFile(s.path(supplier))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("read auth state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode auth state: %w", err)
	}
	return &st, nil
}

// Save replaces the state for st.Supplier. The write goes to a temp file
// renamed into place, so readers never see a partial blob. Last writer wins.
func (s *Store) Save(st *State) error {
	if st.SavedAt.IsZero() {
		st.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth state: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create auth state dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp auth state: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write auth state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close auth state: %w", err)
	}

	if err := os.Rename(tmpName, s.path(st.Supplier)); err != nil {
		return fmt.Errorf("replace auth state: %w", err)
	}
	return nil
}

// Clear removes the state for supplier. Missing state is not an error.
func (s *Store) Clear(supplier string) error {
	err := os.Remove(s.path(supplier))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

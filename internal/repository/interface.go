package repository

import (
	"context"
	"time"
)

// Issuance records one generation request served by the ID service.
type Issuance struct {
	ID        int64     `json:"id,string"`
	Kind      string    `json:"kind"`
	Count     int       `json:"count"`
	FirstID   string    `json:"first_id"`
	LastID    string    `json:"last_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IssuanceRepository defines the interface for the issuance ledger.
type IssuanceRepository interface {
	Record(ctx context.Context, issuance *Issuance) error
	ListRecent(ctx context.Context, limit int) ([]*Issuance, error)
}

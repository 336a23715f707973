package service

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-idgen/internal/repository"
	"github.com/weiawesome/wes-idgen/pkg/idgen"
)

var (
	ErrInvalidCount   = errors.New("invalid count")
	ErrLedgerDisabled = errors.New("issuance ledger is disabled")
)

// GenerateResult is the outcome of a generation request.
type GenerateResult struct {
	Kind idgen.Kind `json:"type"`
	IDs  []string   `json:"ids"`
}

// ValidateResult reports whether an ID is well formed for its kind.
type ValidateResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// KindsResult lists the kinds the service can generate.
type KindsResult struct {
	Default idgen.Kind   `json:"default"`
	Kinds   []idgen.Kind `json:"kinds"`
}

// IDService defines the interface for ID generation operations.
// An empty kind selects the default kind.
type IDService interface {
	Generate(ctx context.Context, kind string, count int) (*GenerateResult, error)
	Validate(ctx context.Context, kind, id string) (*ValidateResult, error)
	Parse(ctx context.Context, kind, id string) (*idgen.ParseResult, error)
	Kinds() *KindsResult
	// Generator returns the generator serving kind, so that other
	// components draw from the same sequence.
	Generator(kind string) (idgen.Generator, error)
	RecentIssuances(ctx context.Context, limit int) ([]*repository.Issuance, error)
}

package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDGenerator generates UUID v4 IDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NextUUID returns a fresh random UUID.
func NextUUID() (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id, nil
}

// Next returns the canonical 36-character form of a fresh UUID.
func (g *UUIDGenerator) Next() (string, error) {
	id, err := NextUUID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (g *UUIDGenerator) Generate() (string, error) {
	return g.Next()
}

func (g *UUIDGenerator) GenerateBatch(count int) ([]string, error) {
	return generateBatch(count, g.Next)
}

func (g *UUIDGenerator) Validate(id string) (bool, string) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Sprintf("invalid UUID format: %v", err)
	}
	if parsed.Version() != 4 {
		return false, fmt.Sprintf("expected UUID v4, got v%d", parsed.Version())
	}
	return true, ""
}

func (g *UUIDGenerator) Parse(id string) (*ParseResult, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, usageErrorf("invalid UUID format: %v", err)
	}

	var variantStr string
	switch parsed.Variant() {
	case uuid.RFC4122:
		variantStr = "RFC4122"
	case uuid.Reserved:
		variantStr = "Reserved"
	case uuid.Microsoft:
		variantStr = "Microsoft"
	case uuid.Future:
		variantStr = "Future"
	default:
		variantStr = "Unknown"
	}

	return &ParseResult{
		UUIDVersion: int32(parsed.Version()),
		UUIDVariant: variantStr,
	}, nil
}

func (g *UUIDGenerator) String() string {
	return "UUIDGenerator(v4)"
}

package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID (Universally Unique Lexicographically Sortable Identifier) IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// NextULID returns a fresh ULID stamped with the current time.
func NextULID() (ulid.ULID, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return ulid.ULID{}, fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id, nil
}

// Next returns the 26-character Crockford Base32 form of a fresh ULID.
func (g *ULIDGenerator) Next() (string, error) {
	id, err := NextULID()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (g *ULIDGenerator) Generate() (string, error) {
	return g.Next()
}

func (g *ULIDGenerator) GenerateBatch(count int) ([]string, error) {
	return generateBatch(count, g.Next)
}

func (g *ULIDGenerator) Validate(id string) (bool, string) {
	if len(id) != ulid.EncodedSize {
		return false, fmt.Sprintf("expected length %d, got %d", ulid.EncodedSize, len(id))
	}
	_, err := ulid.ParseStrict(id)
	if err != nil {
		return false, fmt.Sprintf("invalid ULID format: %v", err)
	}
	return true, ""
}

func (g *ULIDGenerator) Parse(id string) (*ParseResult, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return nil, usageErrorf("invalid ULID format: %v", err)
	}

	return &ParseResult{
		TimestampMs:   int64(parsed.Time()),
		RandomPayload: hex.EncodeToString(parsed.Entropy()),
	}, nil
}

func (g *ULIDGenerator) String() string {
	return "ULIDGenerator"
}

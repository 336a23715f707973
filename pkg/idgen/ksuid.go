package idgen

import (
	"encoding/hex"
	"fmt"

	"github.com/segmentio/ksuid"
)

const ksuidEncodedSize = 27

// KSUIDGenerator generates KSUID (K-Sortable Unique IDentifier) IDs.
type KSUIDGenerator struct{}

// NewKSUIDGenerator creates a new KSUIDGenerator.
func NewKSUIDGenerator() *KSUIDGenerator {
	return &KSUIDGenerator{}
}

func (g *KSUIDGenerator) Next() (string, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate KSUID: %w", err)
	}
	return id.String(), nil
}

func (g *KSUIDGenerator) Generate() (string, error) {
	return g.Next()
}

func (g *KSUIDGenerator) GenerateBatch(count int) ([]string, error) {
	return generateBatch(count, g.Next)
}

func (g *KSUIDGenerator) Validate(id string) (bool, string) {
	if len(id) != ksuidEncodedSize {
		return false, fmt.Sprintf("expected length %d, got %d", ksuidEncodedSize, len(id))
	}
	if _, err := ksuid.Parse(id); err != nil {
		return false, fmt.Sprintf("invalid KSUID format: %v", err)
	}
	return true, ""
}

func (g *KSUIDGenerator) Parse(id string) (*ParseResult, error) {
	parsed, err := ksuid.Parse(id)
	if err != nil {
		return nil, usageErrorf("invalid KSUID format: %v", err)
	}

	return &ParseResult{
		TimestampMs:   parsed.Time().UnixMilli(),
		RandomPayload: hex.EncodeToString(parsed.Payload()),
	}, nil
}

func (g *KSUIDGenerator) String() string {
	return "KSUIDGenerator"
}

// Package idgen generates unique identifiers: 64-bit snowflake integers,
// UUIDv4, ULID, KSUID, NanoID and CUID2 strings, and a registry that
// dispatches to one active generator selected at runtime.
package idgen

import (
	"fmt"
	"iter"
)

// Source produces IDs of type T one at a time.
type Source[T any] interface {
	Next() (T, error)
}

// Generator defines the textual interface for ID generation, validation,
// and parsing. Every generator in this package implements it.
type Generator interface {
	fmt.Stringer
	Generate() (string, error)
	GenerateBatch(count int) ([]string, error)
	Validate(id string) (bool, string) // (valid, reason)
	Parse(id string) (*ParseResult, error)
}

// ParseResult holds the parsed fields from an ID.
type ParseResult struct {
	TimestampMs   int64  `json:"timestamp_ms,omitempty"`   // Snowflake/ULID/KSUID: absolute unix ms
	Instance      int64  `json:"instance,omitempty"`       // Snowflake only
	Sequence      int64  `json:"sequence,omitempty"`       // Snowflake only
	UUIDVersion   int32  `json:"uuid_version,omitempty"`   // UUID only (4)
	UUIDVariant   string `json:"uuid_variant,omitempty"`   // UUID only ("RFC4122")
	RandomPayload string `json:"random_payload,omitempty"` // ULID/KSUID: hex-encoded random bytes
	IDLength      int32  `json:"id_length,omitempty"`      // NanoID/CUID2: ID string length
	Alphabet      string `json:"alphabet,omitempty"`       // NanoID: character set used
}

// Iter presents src as an infinite sequence. Iteration stops after the
// first error, which is yielded with the zero value of T.
func Iter[T any](src Source[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			id, err := src.Next()
			if !yield(id, err) || err != nil {
				return
			}
		}
	}
}

// Func returns src.Next as a plain function value.
func Func[T any](src Source[T]) func() (T, error) {
	return src.Next
}

// Take collects the next n IDs from src.
func Take[T any](src Source[T], n int) ([]T, error) {
	if n < 0 {
		return nil, usageErrorf("count must not be negative, got %d", n)
	}
	ids := make([]T, 0, n)
	for i := 0; i < n; i++ {
		id, err := src.Next()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func generateBatch(count int, generate func() (string, error)) ([]string, error) {
	if count < 0 {
		return nil, usageErrorf("batch count must not be negative, got %d", count)
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := generate()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package idgen

import (
	"fmt"
	"strings"
)

// Kind names a generator in the registry.
type Kind string

const (
	KindSnowflake Kind = "snowflake"
	KindUUID      Kind = "uuid"
	KindULID      Kind = "ulid"
	KindKSUID     Kind = "ksuid"
	KindNanoID    Kind = "nanoid"
	KindCUID2     Kind = "cuid2"
)

// ParseKind normalises s and returns the matching built-in kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindSnowflake, KindUUID, KindULID, KindKSUID, KindNanoID, KindCUID2:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnregisteredKind, s)
}

func (k Kind) String() string {
	return string(k)
}

package idgen

import (
	"encoding/hex"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
)

const ulidTotalBits = 128

// ULID wraps an oklog ULID and exposes its timestamp and random tail.
type ULID struct {
	id ulid.ULID
}

// NewULID builds a ULID from its canonical string, an ulid.ULID, another
// ULID, or a packed 128-bit *big.Int.
func NewULID(v any) (ULID, error) {
	switch val := v.(type) {
	case string:
		id, err := ulid.ParseStrict(val)
		if err != nil {
			return ULID{}, usageErrorf("invalid ULID %q: %v", val, err)
		}
		return ULID{id: id}, nil
	case ulid.ULID:
		return ULID{id: val}, nil
	case ULID:
		return val, nil
	case *big.Int:
		return ULIDFromInt(val)
	default:
		return ULID{}, usageErrorf("cannot build ULID from %T", v)
	}
}

// ParseULID is an alias for NewULID.
func ParseULID(v any) (ULID, error) {
	return NewULID(v)
}

// ULIDFromInt unpacks a 128-bit integer into a ULID.
func ULIDFromInt(v *big.Int) (ULID, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > ulidTotalBits {
		return ULID{}, usageErrorf("ULID value must be a non-negative 128-bit integer")
	}
	var id ulid.ULID
	v.FillBytes(id[:])
	return ULID{id: id}, nil
}

// Timestamp returns the embedded unix time in milliseconds.
func (u ULID) Timestamp() uint64 {
	return u.id.Time()
}

// Random returns the 80-bit random tail.
func (u ULID) Random() *big.Int {
	return new(big.Int).SetBytes(u.id.Entropy())
}

// RandomHex returns the random tail as 20 lowercase hex characters.
func (u ULID) RandomHex() string {
	return hex.EncodeToString(u.id.Entropy())
}

// Value returns the full 128-bit value.
func (u ULID) Value() *big.Int {
	return new(big.Int).SetBytes(u.id[:])
}

func (u ULID) Time() time.Time {
	return ulid.Time(u.id.Time()).UTC()
}

func (u ULID) Raw() ulid.ULID {
	return u.id
}

func (u ULID) String() string {
	return u.id.String()
}

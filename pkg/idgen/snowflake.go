package idgen

import (
	"strconv"
	"strings"
	"time"
)

const (
	TimestampBits = 41
	InstanceBits  = 10
	SequenceBits  = 12

	MaxTimestamp int64 = (1 << TimestampBits) - 1 // 2199023255551
	MaxInstance  int64 = (1 << InstanceBits) - 1  // 1023
	MaxSequence  int64 = (1 << SequenceBits) - 1  // 4095

	instanceShift  = SequenceBits
	timestampShift = SequenceBits + InstanceBits
)

// Snowflake is the decoded form of a 64-bit snowflake ID.
//
// The zero value is a valid ID (timestamp 0 at epoch 0).
type Snowflake struct {
	timestamp int64 // ms since epoch
	instance  int64
	sequence  int64
	epoch     int64 // unix ms
}

// NewSnowflake validates the fields and returns the value object.
func NewSnowflake(timestamp, instance, epoch, seq int64) (Snowflake, error) {
	if timestamp < 0 || timestamp > MaxTimestamp {
		return Snowflake{}, usageErrorf("timestamp must be between 0 and %d, got %d", MaxTimestamp, timestamp)
	}
	if instance < 0 || instance > MaxInstance {
		return Snowflake{}, usageErrorf("instance must be between 0 and %d, got %d", MaxInstance, instance)
	}
	if seq < 0 || seq > MaxSequence {
		return Snowflake{}, usageErrorf("sequence must be between 0 and %d, got %d", MaxSequence, seq)
	}
	if epoch < 0 {
		return Snowflake{}, usageErrorf("epoch must not be negative, got %d", epoch)
	}
	return Snowflake{
		timestamp: timestamp,
		instance:  instance,
		sequence:  seq,
		epoch:     epoch,
	}, nil
}

// ParseSnowflake unpacks value, attaching epoch to the result.
func ParseSnowflake(value, epoch int64) (Snowflake, error) {
	if value < 0 {
		return Snowflake{}, usageErrorf("snowflake id must not be negative, got %d", value)
	}
	if epoch < 0 {
		return Snowflake{}, usageErrorf("epoch must not be negative, got %d", epoch)
	}
	return Snowflake{
		timestamp: (value >> timestampShift) & MaxTimestamp,
		instance:  (value >> instanceShift) & MaxInstance,
		sequence:  value & MaxSequence,
		epoch:     epoch,
	}, nil
}

// ParseSnowflakeString parses a decimal snowflake ID. Signs are rejected.
func ParseSnowflakeString(s string, epoch int64) (Snowflake, error) {
	if strings.HasPrefix(s, "+") {
		return Snowflake{}, usageErrorf("invalid integer format: %q", s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Snowflake{}, usageErrorf("invalid integer format: %v", err)
	}
	return ParseSnowflake(n, epoch)
}

func (s Snowflake) Timestamp() int64 { return s.timestamp }
func (s Snowflake) Instance() int64  { return s.instance }
func (s Snowflake) Sequence() int64  { return s.sequence }
func (s Snowflake) Epoch() int64     { return s.epoch }

// Int64 packs the fields into the 64-bit ID.
func (s Snowflake) Int64() int64 {
	return (s.timestamp << timestampShift) | (s.instance << instanceShift) | s.sequence
}

// Milliseconds returns the absolute unix time of the ID in ms.
func (s Snowflake) Milliseconds() int64 {
	return s.epoch + s.timestamp
}

func (s Snowflake) Seconds() float64 {
	return float64(s.Milliseconds()) / 1000
}

// Timedelta returns the timestamp field as a duration since the epoch.
func (s Snowflake) Timedelta() time.Duration {
	return time.Duration(s.timestamp) * time.Millisecond
}

// Time returns the instant of the ID in UTC.
func (s Snowflake) Time() time.Time {
	return time.UnixMilli(s.Milliseconds()).UTC()
}

// In returns the instant of the ID in loc.
func (s Snowflake) In(loc *time.Location) time.Time {
	return time.UnixMilli(s.Milliseconds()).In(loc)
}

func (s Snowflake) String() string {
	return strconv.FormatInt(s.Int64(), 10)
}

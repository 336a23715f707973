package idgen

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Clock returns the current unix time in milliseconds.
type Clock func() int64

// WallClock reads time.Now.
func WallClock() int64 {
	return time.Now().UnixMilli()
}

// SnowflakeConfig configures a SnowflakeGenerator. All fields are optional.
type SnowflakeConfig struct {
	// Instance is the 10-bit worker ID embedded in every ID.
	Instance int64 `mapstructure:"instance"`
	// Epoch is the custom epoch in unix milliseconds.
	Epoch int64 `mapstructure:"epoch"`
	// Timestamp bootstraps the last-seen time in unix milliseconds.
	// Nil means the current wall clock.
	Timestamp *int64 `mapstructure:"timestamp"`
	// Seq is the sequence already used inside Timestamp.
	Seq int64 `mapstructure:"seq"`

	Clock Clock `mapstructure:"-"`
}

// SnowflakeGenerator generates 64-bit snowflake IDs.
//
// IDs from a single generator are strictly increasing. State is guarded by a
// mutex so one generator may be shared between goroutines.
type SnowflakeGenerator struct {
	mu       sync.Mutex
	epoch    int64 // custom epoch in ms
	instance int64 // 10-bit instance ID
	sequence int64 // 12-bit sequence
	lastTime int64 // last generation timestamp in ms
	now      Clock
}

// NewSnowflakeGenerator validates cfg and creates a SnowflakeGenerator.
func NewSnowflakeGenerator(cfg SnowflakeConfig) (*SnowflakeGenerator, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = WallClock
	}
	now := clock()

	if cfg.Instance < 0 || cfg.Instance > MaxInstance {
		return nil, usageErrorf("instance must be between 0 and %d, got %d", MaxInstance, cfg.Instance)
	}
	if cfg.Seq < 0 || cfg.Seq > MaxSequence {
		return nil, usageErrorf("seq must be between 0 and %d, got %d", MaxSequence, cfg.Seq)
	}
	if cfg.Epoch < 0 || cfg.Epoch > now {
		return nil, usageErrorf("epoch must be between 0 and %d, got %d", now, cfg.Epoch)
	}

	last := now
	if cfg.Timestamp != nil {
		last = *cfg.Timestamp
		if last < 0 || last > now {
			return nil, usageErrorf("timestamp must be between 0 and %d, got %d", now, last)
		}
	}

	return &SnowflakeGenerator{
		epoch:    cfg.Epoch,
		instance: cfg.Instance,
		sequence: cfg.Seq,
		lastTime: last,
		now:      clock,
	}, nil
}

func (g *SnowflakeGenerator) Instance() int64 { return g.instance }
func (g *SnowflakeGenerator) Epoch() int64    { return g.epoch }

// Next returns the next ID as an integer.
func (g *SnowflakeGenerator) Next() (int64, error) {
	sf, err := g.NextSnowflake()
	if err != nil {
		return 0, err
	}
	return sf.Int64(), nil
}

// NextSnowflake returns the next ID in decoded form.
func (g *SnowflakeGenerator) NextSnowflake() (Snowflake, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextLocked()
}

func (g *SnowflakeGenerator) Generate() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (g *SnowflakeGenerator) GenerateBatch(count int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return generateBatch(count, func() (string, error) {
		sf, err := g.nextLocked()
		if err != nil {
			return "", err
		}
		return sf.String(), nil
	})
}

// nextLocked must be called with g.mu held. State is only committed once
// an ID is known to be emittable.
func (g *SnowflakeGenerator) nextLocked() (Snowflake, error) {
	now := g.now()

	if now < g.lastTime {
		return Snowflake{}, fmt.Errorf("%w: current=%d, last=%d", ErrClockMovedBackwards, now, g.lastTime)
	}

	var seq int64
	if now == g.lastTime {
		seq = g.sequence + 1
		if seq > MaxSequence {
			// Sequence exhausted, wait for next millisecond
			g.waitNextMilli()
			now = g.lastTime + 1
			seq = 0
		}
	}

	ts := now - g.epoch
	if ts < 0 {
		return Snowflake{}, fmt.Errorf("%w: current time %d is before epoch %d", ErrClockMovedBackwards, now, g.epoch)
	}
	if ts > MaxTimestamp {
		return Snowflake{}, fmt.Errorf("%w: %d ms since epoch %d exceeds %d", ErrTimestampOverflow, ts, g.epoch, MaxTimestamp)
	}

	g.lastTime = now
	g.sequence = seq

	return Snowflake{
		timestamp: ts,
		instance:  g.instance,
		sequence:  seq,
		epoch:     g.epoch,
	}, nil
}

func (g *SnowflakeGenerator) waitNextMilli() {
	for g.now() <= g.lastTime {
		runtime.Gosched()
	}
}

func (g *SnowflakeGenerator) Validate(id string) (bool, string) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || strings.HasPrefix(id, "+") {
		return false, "invalid integer format"
	}
	if n < 0 {
		return false, "id must be a positive integer"
	}

	sf, _ := ParseSnowflake(n, g.epoch)
	if sf.Milliseconds() > g.now() {
		return false, "timestamp is in the future"
	}

	return true, ""
}

func (g *SnowflakeGenerator) Parse(id string) (*ParseResult, error) {
	sf, err := ParseSnowflakeString(id, g.epoch)
	if err != nil {
		return nil, err
	}

	return &ParseResult{
		TimestampMs: sf.Milliseconds(),
		Instance:    sf.Instance(),
		Sequence:    sf.Sequence(),
	}, nil
}

func (g *SnowflakeGenerator) String() string {
	return fmt.Sprintf("SnowflakeGenerator(instance=%d, epoch=%d)", g.instance, g.epoch)
}

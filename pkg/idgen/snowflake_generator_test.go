package idgen

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a scripted sequence of readings, repeating the last one.
type fakeClock struct {
	mu       sync.Mutex
	readings []int64
}

func newFakeClock(readings ...int64) *fakeClock {
	return &fakeClock{readings: readings}
}

func (c *fakeClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.readings[0]
	if len(c.readings) > 1 {
		c.readings = c.readings[1:]
	}
	return v
}

func (c *fakeClock) set(readings ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readings = readings
}

func int64Ptr(v int64) *int64 { return &v }

func TestSnowflakeGeneratorStrictlyIncreasing(t *testing.T) {
	g, err := NewSnowflakeGenerator(SnowflakeConfig{Instance: 1})
	require.NoError(t, err)

	prev := int64(-1)
	seen := make(map[int64]struct{})
	for i := 0; i < 10; i++ {
		id, err := g.Next()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		assert.Equal(t, int64(1), (id>>12)&MaxInstance)
		seen[id] = struct{}{}
		prev = id
	}
	assert.Len(t, seen, 10)
}

func TestSnowflakeGeneratorManyIDs(t *testing.T) {
	g, err := NewSnowflakeGenerator(SnowflakeConfig{Instance: 7, Epoch: 1704067200000})
	require.NoError(t, err)

	ids, err := Take[int64](g, 20000)
	require.NoError(t, err)
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1], ids[i])

		prev, _ := ParseSnowflake(ids[i-1], g.Epoch())
		cur, _ := ParseSnowflake(ids[i], g.Epoch())
		if cur.Timestamp() == prev.Timestamp() {
			require.Equal(t, prev.Sequence()+1, cur.Sequence())
		} else {
			require.Equal(t, int64(0), cur.Sequence())
		}
	}
}

func TestSnowflakeGeneratorSequenceWithinMillisecond(t *testing.T) {
	clock := newFakeClock(5000)
	g, err := NewSnowflakeGenerator(SnowflakeConfig{Instance: 3, Clock: clock.Now, Timestamp: int64Ptr(4999)})
	require.NoError(t, err)

	for want := int64(0); want < 5; want++ {
		sf, err := g.NextSnowflake()
		require.NoError(t, err)
		assert.Equal(t, int64(5000), sf.Timestamp())
		assert.Equal(t, want, sf.Sequence())
		assert.Equal(t, int64(3), sf.Instance())
	}
}

func TestSnowflakeGeneratorSequenceExhaustion(t *testing.T) {
	clock := newFakeClock(1000)
	g, err := NewSnowflakeGenerator(SnowflakeConfig{
		Clock:     clock.Now,
		Timestamp: int64Ptr(1000),
		Seq:       MaxSequence - 1,
	})
	require.NoError(t, err)

	sf, err := g.NextSnowflake()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), sf.Timestamp())
	assert.Equal(t, MaxSequence, sf.Sequence())

	// Two more reads inside the same millisecond force the wait loop to spin.
	clock.set(1000, 1000, 1000, 1001)
	sf, err = g.NextSnowflake()
	require.NoError(t, err)
	assert.Equal(t, int64(1001), sf.Timestamp())
	assert.Equal(t, int64(0), sf.Sequence())
}

func TestSnowflakeGeneratorExhaustionUsesNextMillisecond(t *testing.T) {
	clock := newFakeClock(2000, 2007)
	g, err := NewSnowflakeGenerator(SnowflakeConfig{
		Clock:     clock.Now,
		Timestamp: int64Ptr(2000),
		Seq:       MaxSequence,
	})
	require.NoError(t, err)
	clock.set(2000, 2007)

	sf, err := g.NextSnowflake()
	require.NoError(t, err)
	assert.Equal(t, int64(2001), sf.Timestamp())
	assert.Equal(t, int64(0), sf.Sequence())
}

func TestSnowflakeGeneratorClockMovedBackwards(t *testing.T) {
	clock := newFakeClock(3000)
	g, err := NewSnowflakeGenerator(SnowflakeConfig{Clock: clock.Now, Timestamp: int64Ptr(2999)})
	require.NoError(t, err)

	first, err := g.NextSnowflake()
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Sequence())

	clock.set(2990)
	_, err = g.Next()
	assert.ErrorIs(t, err, ErrClockMovedBackwards)

	// State is unchanged: once the clock recovers the sequence continues.
	clock.set(3000)
	sf, err := g.NextSnowflake()
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sf.Timestamp())
	assert.Equal(t, int64(1), sf.Sequence())
}

func TestSnowflakeGeneratorTimestampOverflow(t *testing.T) {
	clock := newFakeClock(0)
	g, err := NewSnowflakeGenerator(SnowflakeConfig{Clock: clock.Now})
	require.NoError(t, err)

	clock.set(MaxTimestamp)
	sf, err := g.NextSnowflake()
	require.NoError(t, err)
	assert.Equal(t, MaxTimestamp, sf.Timestamp())

	clock.set(MaxTimestamp + 1)
	_, err = g.Next()
	assert.ErrorIs(t, err, ErrTimestampOverflow)

	_, err = g.Generate()
	assert.ErrorIs(t, err, ErrTimestampOverflow)
}

func TestNewSnowflakeGeneratorValidation(t *testing.T) {
	now := int64(1_700_000_000_000)
	clock := func() int64 { return now }

	tests := []struct {
		name string
		cfg  SnowflakeConfig
	}{
		{"negative instance", SnowflakeConfig{Instance: -1}},
		{"instance overflow", SnowflakeConfig{Instance: MaxInstance + 1}},
		{"negative seq", SnowflakeConfig{Seq: -1}},
		{"seq overflow", SnowflakeConfig{Seq: MaxSequence + 1}},
		{"negative epoch", SnowflakeConfig{Epoch: -1}},
		{"future epoch", SnowflakeConfig{Epoch: now + 1}},
		{"negative timestamp", SnowflakeConfig{Timestamp: int64Ptr(-1)}},
		{"future timestamp", SnowflakeConfig{Timestamp: int64Ptr(now + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Clock = clock
			_, err := NewSnowflakeGenerator(tt.cfg)
			assert.ErrorIs(t, err, ErrLibraryUsage)
		})
	}

	g, err := NewSnowflakeGenerator(SnowflakeConfig{
		Instance:  MaxInstance,
		Seq:       MaxSequence,
		Epoch:     now,
		Timestamp: int64Ptr(now),
		Clock:     clock,
	})
	require.NoError(t, err)
	assert.Equal(t, MaxInstance, g.Instance())
}

func TestSnowflakeGeneratorRejectsNegativeInstanceWithWallClock(t *testing.T) {
	_, err := NewSnowflakeGenerator(SnowflakeConfig{Instance: -1})
	assert.ErrorIs(t, err, ErrLibraryUsage)
}

func TestSnowflakeGeneratorConcurrentUse(t *testing.T) {
	g, err := NewSnowflakeGenerator(SnowflakeConfig{Instance: 9})
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		seen  sync.Map
		dupes atomic.Int64
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				id, err := g.Next()
				if err != nil {
					t.Error(err)
					return
				}
				if _, loaded := seen.LoadOrStore(id, struct{}{}); loaded {
					dupes.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, dupes.Load())
}

func TestSnowflakeGeneratorTextualContract(t *testing.T) {
	g, err := NewSnowflakeGenerator(SnowflakeConfig{Instance: 12, Epoch: 1704067200000})
	require.NoError(t, err)

	ids, err := g.GenerateBatch(50)
	require.NoError(t, err)
	require.Len(t, ids, 50)

	for _, id := range ids {
		valid, reason := g.Validate(id)
		assert.True(t, valid, reason)

		res, err := g.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, int64(12), res.Instance)
		assert.GreaterOrEqual(t, res.TimestampMs, int64(1704067200000))
	}

	valid, _ := g.Validate("not-a-number")
	assert.False(t, valid)
	valid, _ = g.Validate("-5")
	assert.False(t, valid)
	valid, reason := g.Validate("+" + ids[0])
	assert.False(t, valid)
	assert.Equal(t, "invalid integer format", reason)
	_, err = g.Parse("+" + ids[0])
	assert.ErrorIs(t, err, ErrLibraryUsage)

	future, err := NewSnowflake(MaxTimestamp, 12, g.Epoch(), 0)
	require.NoError(t, err)
	valid, reason = g.Validate(future.String())
	assert.False(t, valid)
	assert.Equal(t, "timestamp is in the future", reason)

	_, err = g.Parse("xyz")
	assert.ErrorIs(t, err, ErrLibraryUsage)

	assert.Equal(t, "SnowflakeGenerator(instance=12, epoch=1704067200000)", g.String())
}

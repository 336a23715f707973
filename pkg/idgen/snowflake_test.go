package idgen

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeConstants(t *testing.T) {
	assert.Equal(t, int64(2199023255551), MaxTimestamp)
	assert.Equal(t, int64(1023), MaxInstance)
	assert.Equal(t, int64(4095), MaxSequence)
}

func TestSnowflakeParseRoundTrip(t *testing.T) {
	sf, err := NewSnowflake(12345678, 42, 10000, 321)
	require.NoError(t, err)

	v := sf.Int64()
	sf2, err := ParseSnowflake(v, 10000)
	require.NoError(t, err)

	assert.Equal(t, int64(12345678), sf2.Timestamp())
	assert.Equal(t, int64(42), sf2.Instance())
	assert.Equal(t, int64(321), sf2.Sequence())
	assert.Equal(t, int64(10000), sf2.Epoch())
	assert.Equal(t, v, sf2.Int64())
	assert.Equal(t, sf, sf2)
}

func TestSnowflakeDerivedTimes(t *testing.T) {
	sf, err := NewSnowflake(1000, 5, 100, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1100), sf.Milliseconds())
	assert.InDelta(t, 1.1, sf.Seconds(), 1e-9)
	assert.Equal(t, time.Second, sf.Timedelta())
	assert.Equal(t, time.UnixMilli(1100).UTC(), sf.Time())
	assert.Equal(t, time.UTC, sf.Time().Location())

	_, offset := sf.In(time.FixedZone("UTC+8", 8*3600)).Zone()
	assert.Equal(t, 28800, offset)
	assert.True(t, sf.In(time.FixedZone("UTC+8", 8*3600)).Equal(sf.Time()))
}

func TestSnowflakeString(t *testing.T) {
	sf, err := NewSnowflake(1, 1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "4198401", sf.String()) // 1<<22 | 1<<12 | 1
}

func TestNewSnowflakeRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		timestamp int64
		instance  int64
		epoch     int64
		seq       int64
	}{
		{"negative timestamp", -1, 0, 0, 0},
		{"timestamp overflow", MaxTimestamp + 1, 0, 0, 0},
		{"negative instance", 0, -1, 0, 0},
		{"instance overflow", 0, MaxInstance + 1, 0, 0},
		{"negative seq", 0, 0, 0, -1},
		{"seq overflow", 0, 0, 0, MaxSequence + 1},
		{"negative epoch", 0, 0, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnowflake(tt.timestamp, tt.instance, tt.epoch, tt.seq)
			assert.ErrorIs(t, err, ErrLibraryUsage)
		})
	}
}

func TestParseSnowflakeRejectsBadInput(t *testing.T) {
	_, err := ParseSnowflake(-1, 0)
	assert.ErrorIs(t, err, ErrLibraryUsage)

	_, err = ParseSnowflake(1, -1)
	assert.ErrorIs(t, err, ErrLibraryUsage)

	_, err = ParseSnowflakeString("abc", 0)
	assert.ErrorIs(t, err, ErrLibraryUsage)

	_, err = ParseSnowflakeString("+4198401", 0)
	assert.ErrorIs(t, err, ErrLibraryUsage)

	sf, err := ParseSnowflakeString("4198401", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sf.Instance())
}

func TestSnowflakeRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("parse(int(sf), epoch) == sf", prop.ForAll(
		func(ts, instance, seq, epoch int64) bool {
			sf, err := NewSnowflake(ts, instance, epoch, seq)
			if err != nil {
				return false
			}
			back, err := ParseSnowflake(sf.Int64(), epoch)
			return err == nil && back == sf && back.Int64() == sf.Int64() && sf.Int64() >= 0
		},
		gen.Int64Range(0, MaxTimestamp),
		gen.Int64Range(0, MaxInstance),
		gen.Int64Range(0, MaxSequence),
		gen.Int64Range(0, 1<<50),
	))

	properties.TestingRun(t)
}

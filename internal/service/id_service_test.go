package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-idgen/internal/repository"
	"github.com/weiawesome/wes-idgen/pkg/idgen"
	"github.com/weiawesome/wes-idgen/pkg/pubsub"
)

type memoryLedger struct {
	mu      sync.Mutex
	records []*repository.Issuance
	err     error
}

func (m *memoryLedger) Record(_ context.Context, iss *repository.Issuance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	iss.ID = int64(len(m.records) + 1)
	m.records = append(m.records, iss)
	return nil
}

func (m *memoryLedger) ListRecent(_ context.Context, limit int) ([]*repository.Issuance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*repository.Issuance, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

type capturePublisher struct {
	mu       sync.Mutex
	channels []string
	events   []*pubsub.Event
	err      error
}

func (c *capturePublisher) Publish(_ context.Context, channel string, evt *pubsub.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, channel)
	c.events = append(c.events, evt)
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func newTestService(t *testing.T, ledger repository.IssuanceRepository) IDService {
	t.Helper()
	reg := idgen.NewRegistry()
	idgen.RegisterBuiltins(reg)

	svc, err := NewIDService(reg, Options{
		DefaultKind: idgen.KindSnowflake,
		Configs: map[idgen.Kind]idgen.Config{
			idgen.KindSnowflake: {"instance": 3, "epoch": 1704067200000},
			idgen.KindNanoID:    {"size": 8},
		},
		MaxBatch: 100,
		Ledger:   ledger,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateDefaultKindSharesDispatcher(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	a, err := svc.Generate(ctx, "", 5)
	require.NoError(t, err)
	assert.Equal(t, idgen.KindSnowflake, a.Kind)

	b, err := svc.Generate(ctx, "SNOWFLAKE", 5)
	require.NoError(t, err)

	ids := append(a.IDs, b.IDs...)
	prev := int64(-1)
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestGenerateOtherKinds(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	want := map[string]int{"uuid": 36, "ulid": 26, "ksuid": 27, "nanoid": 8, "cuid2": idgen.DefaultCUID2Length}
	for kind, length := range want {
		res, err := svc.Generate(ctx, kind, 3)
		require.NoError(t, err, kind)
		require.Len(t, res.IDs, 3)
		for _, id := range res.IDs {
			assert.Len(t, id, length, kind)
		}
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "uuid", 0)
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = svc.Generate(ctx, "uuid", 101)
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = svc.Generate(ctx, "guid", 1)
	assert.ErrorIs(t, err, idgen.ErrUnregisteredKind)
}

func TestGenerateRecordsIssuance(t *testing.T) {
	ledger := &memoryLedger{}
	svc := newTestService(t, ledger)
	ctx := context.Background()

	res, err := svc.Generate(ctx, "ulid", 4)
	require.NoError(t, err)

	recent, err := svc.RecentIssuances(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "ulid", recent[0].Kind)
	assert.Equal(t, 4, recent[0].Count)
	assert.Equal(t, res.IDs[0], recent[0].FirstID)
	assert.Equal(t, res.IDs[3], recent[0].LastID)

	ledger.err = errors.New("db down")
	_, err = svc.Generate(ctx, "ulid", 1)
	assert.NoError(t, err)
}

func TestGeneratePublishesIssuedEvent(t *testing.T) {
	reg := idgen.NewRegistry()
	idgen.RegisterBuiltins(reg)
	events := &capturePublisher{}
	svc, err := NewIDService(reg, Options{
		DefaultKind: idgen.KindKSUID,
		Configs:     map[idgen.Kind]idgen.Config{idgen.KindSnowflake: {"instance": 1}},
		Events:      events,
	})
	require.NoError(t, err)

	res, err := svc.Generate(context.Background(), "", 2)
	require.NoError(t, err)

	require.Len(t, events.events, 1)
	assert.Equal(t, "idgen:ksuid:issued", events.channels[0])
	assert.Equal(t, pubsub.EventIDsIssued, events.events[0].Type)

	var p pubsub.IssuedPayload
	require.NoError(t, events.events[0].UnmarshalPayload(&p))
	assert.Equal(t, 2, p.Count)
	assert.Equal(t, res.IDs[1], p.LastID)

	events.err = errors.New("broker down")
	_, err = svc.Generate(context.Background(), "", 1)
	assert.NoError(t, err)
}

func TestRecentIssuancesLimit(t *testing.T) {
	ledger := &memoryLedger{}
	svc := newTestService(t, ledger)
	ctx := context.Background()

	for i := 0; i < 130; i++ {
		_, err := svc.Generate(ctx, "uuid", 1)
		require.NoError(t, err)
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-3, 20},
		{5, 5},
		{100, 100},
		{500, 100},
	}
	for _, tt := range tests {
		got, err := svc.RecentIssuances(ctx, tt.limit)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "limit=%d", tt.limit)
	}
}

func TestRecentIssuancesWithoutLedger(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.RecentIssuances(context.Background(), 5)
	assert.ErrorIs(t, err, ErrLedgerDisabled)
}

func TestValidateAndParse(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.Generate(ctx, "", 1)
	require.NoError(t, err)

	v, err := svc.Validate(ctx, "", res.IDs[0])
	require.NoError(t, err)
	assert.True(t, v.Valid, v.Reason)

	parsed, err := svc.Parse(ctx, "snowflake", res.IDs[0])
	require.NoError(t, err)
	assert.Equal(t, int64(3), parsed.Instance)

	v, err = svc.Validate(ctx, "uuid", "nope")
	require.NoError(t, err)
	assert.False(t, v.Valid)

	_, err = svc.Parse(ctx, "uuid", "nope")
	assert.ErrorIs(t, err, idgen.ErrLibraryUsage)
}

func TestKinds(t *testing.T) {
	svc := newTestService(t, nil)
	k := svc.Kinds()
	assert.Equal(t, idgen.KindSnowflake, k.Default)
	assert.Len(t, k.Kinds, 6)
}

func TestGeneratorSharesSequence(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	gen, err := svc.Generator("snowflake")
	require.NoError(t, err)

	first, err := gen.Generate()
	require.NoError(t, err)
	res, err := svc.Generate(ctx, "snowflake", 1)
	require.NoError(t, err)

	a, _ := strconv.ParseInt(first, 10, 64)
	b, _ := strconv.ParseInt(res.IDs[0], 10, 64)
	assert.Greater(t, b, a)

	_, err = svc.Generator("guid")
	assert.ErrorIs(t, err, idgen.ErrUnregisteredKind)
}

func TestNewIDServiceRequiresSnowflakeConfig(t *testing.T) {
	reg := idgen.NewRegistry()
	idgen.RegisterBuiltins(reg)

	_, err := NewIDService(reg, Options{DefaultKind: idgen.KindULID})
	assert.ErrorIs(t, err, idgen.ErrMissingConfig)
}

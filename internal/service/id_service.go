package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/weiawesome/wes-idgen/internal/repository"
	"github.com/weiawesome/wes-idgen/pkg/idgen"
	"github.com/weiawesome/wes-idgen/pkg/log"
	"github.com/weiawesome/wes-idgen/pkg/pubsub"
)

const (
	defaultIssuanceLimit = 20
	maxIssuanceLimit     = 100
)

type idService struct {
	registry   *idgen.Registry
	generators map[idgen.Kind]idgen.Generator
	maxBatch   int
	ledger     repository.IssuanceRepository
	events     pubsub.Publisher
}

// Options configures NewIDService.
type Options struct {
	// DefaultKind is activated on the registry and served for requests
	// that name no kind.
	DefaultKind idgen.Kind
	// Configs holds per-kind registry options.
	Configs  map[idgen.Kind]idgen.Config
	MaxBatch int
	// Ledger is optional; when nil issuances are not recorded.
	Ledger repository.IssuanceRepository
	// Events is optional; when set every issuance is published.
	Events pubsub.Publisher
}

// NewIDService activates the default kind on reg and builds one generator
// for every other registered kind.
func NewIDService(reg *idgen.Registry, opts Options) (IDService, error) {
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 1000
	}

	if err := reg.Init(opts.DefaultKind, opts.Configs[opts.DefaultKind]); err != nil {
		return nil, fmt.Errorf("failed to init default kind %q: %w", opts.DefaultKind, err)
	}
	active, err := reg.Active()
	if err != nil {
		return nil, err
	}

	// The default kind shares the registry's instance so that a snowflake
	// sequence is never produced by two generators.
	generators := map[idgen.Kind]idgen.Generator{opts.DefaultKind: active}
	for _, kind := range reg.Kinds() {
		if kind == opts.DefaultKind {
			continue
		}
		gen, err := reg.Build(kind, opts.Configs[kind])
		if err != nil {
			return nil, fmt.Errorf("failed to build %s generator: %w", kind, err)
		}
		generators[kind] = gen
	}

	return &idService{
		registry:   reg,
		generators: generators,
		maxBatch:   opts.MaxBatch,
		ledger:     opts.Ledger,
		events:     opts.Events,
	}, nil
}

func (s *idService) resolve(kind string) (idgen.Kind, idgen.Generator, error) {
	k := idgen.Kind(strings.ToLower(strings.TrimSpace(kind)))
	if k == "" {
		return s.registry.Kind(), s.registry, nil
	}
	gen, ok := s.generators[k]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", idgen.ErrUnregisteredKind, kind)
	}
	return k, gen, nil
}

func (s *idService) Generate(ctx context.Context, kind string, count int) (*GenerateResult, error) {
	if count < 1 || count > s.maxBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidCount, s.maxBatch, count)
	}

	k, gen, err := s.resolve(kind)
	if err != nil {
		return nil, err
	}
	ctx = log.WithIDKind(ctx, k.String())
	l := log.Ctx(ctx)

	var ids []string
	if count == 1 {
		id, err := gen.Generate()
		if err != nil {
			l.Error().Err(err).Msg("failed to generate id")
			return nil, err
		}
		ids = []string{id}
	} else {
		ids, err = gen.GenerateBatch(count)
		if err != nil {
			l.Error().Err(err).Int(log.FieldIDCount, count).Msg("failed to generate batch ids")
			return nil, err
		}
	}

	if s.ledger != nil {
		issuance := &repository.Issuance{
			Kind:    k.String(),
			Count:   len(ids),
			FirstID: ids[0],
			LastID:  ids[len(ids)-1],
		}
		if err := s.ledger.Record(ctx, issuance); err != nil {
			// IDs are already consumed; a ledger failure does not fail the request.
			l.Warn().Err(err).Msg("issuance not recorded")
		}
	}

	if s.events != nil {
		s.publishIssued(ctx, k, ids)
	}

	l.Debug().Int(log.FieldIDCount, len(ids)).Msg("ids generated")
	return &GenerateResult{Kind: k, IDs: ids}, nil
}

func (s *idService) publishIssued(ctx context.Context, kind idgen.Kind, ids []string) {
	l := log.Ctx(ctx)

	evt, err := pubsub.NewEvent(pubsub.EventIDsIssued, kind.String(), pubsub.IssuedPayload{
		Kind:    kind.String(),
		Count:   len(ids),
		FirstID: ids[0],
		LastID:  ids[len(ids)-1],
	})
	if err != nil {
		l.Warn().Err(err).Msg("failed to build issuance event")
		return
	}
	if err := s.events.Publish(ctx, pubsub.IssuedChannel(kind.String()), evt); err != nil {
		l.Warn().Err(err).Msg("issuance event not published")
	}
}

func (s *idService) Validate(ctx context.Context, kind, id string) (*ValidateResult, error) {
	_, gen, err := s.resolve(kind)
	if err != nil {
		return nil, err
	}
	valid, reason := gen.Validate(id)
	return &ValidateResult{Valid: valid, Reason: reason}, nil
}

func (s *idService) Parse(ctx context.Context, kind, id string) (*idgen.ParseResult, error) {
	_, gen, err := s.resolve(kind)
	if err != nil {
		return nil, err
	}
	return gen.Parse(id)
}

func (s *idService) Kinds() *KindsResult {
	return &KindsResult{
		Default: s.registry.Kind(),
		Kinds:   s.registry.Kinds(),
	}
}

func (s *idService) Generator(kind string) (idgen.Generator, error) {
	_, gen, err := s.resolve(kind)
	return gen, err
}

func (s *idService) RecentIssuances(ctx context.Context, limit int) ([]*repository.Issuance, error) {
	if s.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	switch {
	case limit < 1:
		limit = defaultIssuanceLimit
	case limit > maxIssuanceLimit:
		limit = maxIssuanceLimit
	}
	return s.ledger.ListRecent(ctx, limit)
}

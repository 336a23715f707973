package idgen

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// Config carries the options handed to a factory, keyed by option name
// (for example "instance" or "epoch" for snowflake).
type Config map[string]any

// Factory builds a generator. cfg may be nil for kinds registered without
// needsConfig, in which case the factory applies its defaults.
type Factory func(cfg Config) (Generator, error)

type entry struct {
	factory     Factory
	needsConfig bool
}

// Registry selects one active generator among registered kinds and
// forwards every call to it.
type Registry struct {
	mu      sync.RWMutex
	entries map[Kind]entry
	kind    Kind
	active  Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Kind]entry)}
}

// Register stores factory under kind, replacing any previous entry.
func (r *Registry) Register(kind Kind, factory Factory, needsConfig bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[kind] = entry{factory: factory, needsConfig: needsConfig}
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Build creates a generator of the given kind without activating it.
func (r *Registry) Build(kind Kind, cfg Config) (Generator, error) {
	r.mu.RLock()
	e, ok := r.entries[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredKind, kind)
	}

	if e.needsConfig && len(cfg) == 0 {
		return nil, fmt.Errorf("%w: kind %q requires configuration", ErrMissingConfig, kind)
	}
	return e.factory(cfg)
}

// Init builds a generator of the given kind and makes it the active one,
// replacing any generator activated earlier.
func (r *Registry) Init(kind Kind, cfg Config) error {
	gen, err := r.Build(kind, cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.kind = kind
	r.active = gen
	return nil
}

// Kind returns the active kind, or "" before Init.
func (r *Registry) Kind() Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kind
}

// Active returns the active generator.
func (r *Registry) Active() (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return nil, ErrNotInitialized
	}
	return r.active, nil
}

// Next produces an ID with the active generator.
func (r *Registry) Next() (string, error) {
	gen, err := r.Active()
	if err != nil {
		return "", err
	}
	return gen.Generate()
}

func (r *Registry) Generate() (string, error) {
	return r.Next()
}

func (r *Registry) GenerateBatch(count int) ([]string, error) {
	gen, err := r.Active()
	if err != nil {
		return nil, err
	}
	return gen.GenerateBatch(count)
}

func (r *Registry) Validate(id string) (bool, string) {
	gen, err := r.Active()
	if err != nil {
		return false, err.Error()
	}
	return gen.Validate(id)
}

func (r *Registry) Parse(id string) (*ParseResult, error) {
	gen, err := r.Active()
	if err != nil {
		return nil, err
	}
	return gen.Parse(id)
}

func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return "IDGen(uninitialized)"
	}
	return fmt.Sprintf("IDGen(kind=%s, %s)", r.kind, r.active)
}

// DecodeConfig copies the recognised options in cfg into out, which must be
// a pointer to a struct with mapstructure tags. Unknown keys are ignored.
// Integer options accept integers, integral floats and decimal strings;
// anything else fails with ErrLibraryUsage.
func DecodeConfig(cfg Config, out any) error {
	if len(cfg) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       strictIntegerHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(cfg)); err != nil {
		return usageErrorf("invalid config: %v", err)
	}
	return nil
}

// strictIntegerHook stops weak decoding from turning bools, fractions, empty
// strings or hex literals into integer options.
func strictIntegerHook(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	switch from.Kind() {
	case reflect.Bool:
		return nil, fmt.Errorf("expected an integer, got bool %v", data)
	case reflect.Float32, reflect.Float64:
		f := reflect.ValueOf(data).Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected an integer, got %v", data)
		}
		return int64(f), nil
	case reflect.String:
		n, err := strconv.ParseInt(reflect.ValueOf(data).String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a decimal integer, got %q", data)
		}
		return n, nil
	}
	return data, nil
}

// RegisterBuiltins registers every generator kind shipped with this package.
// Snowflake requires configuration so that the instance ID is always chosen
// explicitly; the other kinds fall back to their defaults.
func RegisterBuiltins(r *Registry) {
	r.Register(KindSnowflake, func(cfg Config) (Generator, error) {
		var sc SnowflakeConfig
		if err := DecodeConfig(cfg, &sc); err != nil {
			return nil, err
		}
		return NewSnowflakeGenerator(sc)
	}, true)

	r.Register(KindUUID, func(Config) (Generator, error) {
		return NewUUIDGenerator(), nil
	}, false)

	r.Register(KindULID, func(Config) (Generator, error) {
		return NewULIDGenerator(), nil
	}, false)

	r.Register(KindKSUID, func(Config) (Generator, error) {
		return NewKSUIDGenerator(), nil
	}, false)

	r.Register(KindNanoID, func(cfg Config) (Generator, error) {
		var nc NanoIDConfig
		if err := DecodeConfig(cfg, &nc); err != nil {
			return nil, err
		}
		return NewNanoIDGenerator(nc)
	}, false)

	r.Register(KindCUID2, func(cfg Config) (Generator, error) {
		var cc CUID2Config
		if err := DecodeConfig(cfg, &cc); err != nil {
			return nil, err
		}
		return NewCUID2Generator(cc)
	}, false)
}

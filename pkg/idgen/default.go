package idgen

var std = NewRegistry()

func init() {
	RegisterBuiltins(std)
}

// Default returns the process-wide registry. All built-in kinds are
// registered; call Init before Next.
func Default() *Registry {
	return std
}

// Register adds a factory to the default registry.
func Register(kind Kind, factory Factory, needsConfig bool) {
	std.Register(kind, factory, needsConfig)
}

// Init activates a generator in the default registry.
func Init(kind Kind, cfg Config) error {
	return std.Init(kind, cfg)
}

// Next produces an ID from the default registry.
func Next() (string, error) {
	return std.Next()
}

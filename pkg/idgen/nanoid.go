package idgen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultNanoIDSize     = 21
	DefaultNanoIDAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// go-nanoid refuses larger alphabets at generation time.
	maxNanoIDAlphabet = 255
)

// NanoIDConfig configures a NanoIDGenerator. Zero fields take the defaults.
type NanoIDConfig struct {
	Size     int    `mapstructure:"size"`
	Alphabet string `mapstructure:"alphabet"`
}

// NanoIDGenerator generates NanoID identifiers with configurable size and alphabet.
type NanoIDGenerator struct {
	size     int
	alphabet string
}

// NewNanoIDGenerator creates a new NanoIDGenerator.
// size must be between 1 and 256. alphabet must have between 2 and 255 characters.
func NewNanoIDGenerator(cfg NanoIDConfig) (*NanoIDGenerator, error) {
	if cfg.Size == 0 {
		cfg.Size = DefaultNanoIDSize
	}
	if cfg.Alphabet == "" {
		cfg.Alphabet = DefaultNanoIDAlphabet
	}
	if cfg.Size < 1 || cfg.Size > 256 {
		return nil, usageErrorf("nanoid size must be between 1 and 256, got %d", cfg.Size)
	}
	if n := utf8.RuneCountInString(cfg.Alphabet); n < 2 || n > maxNanoIDAlphabet {
		return nil, usageErrorf("nanoid alphabet must have between 2 and %d characters, got %d", maxNanoIDAlphabet, n)
	}
	return &NanoIDGenerator{
		size:     cfg.Size,
		alphabet: cfg.Alphabet,
	}, nil
}

func (g *NanoIDGenerator) Next() (string, error) {
	id, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate NanoID: %w", err)
	}
	return id, nil
}

func (g *NanoIDGenerator) Generate() (string, error) {
	return g.Next()
}

func (g *NanoIDGenerator) GenerateBatch(count int) ([]string, error) {
	return generateBatch(count, g.Next)
}

func (g *NanoIDGenerator) Validate(id string) (bool, string) {
	if n := len([]rune(id)); n != g.size {
		return false, fmt.Sprintf("expected length %d, got %d", g.size, n)
	}
	for _, c := range id {
		if !strings.ContainsRune(g.alphabet, c) {
			return false, fmt.Sprintf("character '%c' not in alphabet", c)
		}
	}
	return true, ""
}

func (g *NanoIDGenerator) Parse(id string) (*ParseResult, error) {
	valid, reason := g.Validate(id)
	if !valid {
		return nil, usageErrorf("invalid NanoID: %s", reason)
	}

	return &ParseResult{
		IDLength: int32(len([]rune(id))),
		Alphabet: g.alphabet,
	}, nil
}

func (g *NanoIDGenerator) String() string {
	return fmt.Sprintf("NanoIDGenerator(size=%d)", g.size)
}

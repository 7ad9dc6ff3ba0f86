package internal

import (
	"github.com/an0763229796-cpu/AlphaDrop/internal/gemini"
	"github.com/an0763229796-cpu/AlphaDrop/internal/kvstore"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	store     kvstore.Store
	generator gemini.Generator
	mcpMode   bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStore overrides the key-value store. Used in tests.
func WithStore(store kvstore.Store) Option {
	return func(a *application) {
		a.store = store
	}
}

// WithGenerator overrides the research provider. Used in tests.
func WithGenerator(gen gemini.Generator) Option {
	return func(a *application) {
		a.generator = gen
	}
}

// WithMCP switches the application to MCP stdio mode instead of the
// HTTP server.
func WithMCP() Option {
	return func(a *application) {
		a.mcpMode = true
	}
}

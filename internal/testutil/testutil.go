// Package testutil provides shared test doubles: an in-memory key-value
// store and a scripted model generator.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/an0763229796-cpu/AlphaDrop/internal/apperr"
	"github.com/an0763229796-cpu/AlphaDrop/internal/gemini"
	"github.com/an0763229796-cpu/AlphaDrop/internal/kvstore"
)

// MemoryStore implements kvstore.Store over a map. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// GetErr / SetErr, when set, force the corresponding operation to fail.
	GetErr error
	SetErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value under key.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// Keys returns the stored keys, for assertions.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}

var _ kvstore.Store = (*MemoryStore)(nil)

// Rule maps a prompt substring to a canned generator outcome. The first
// matching rule wins.
type Rule struct {
	Match string
	Resp  *gemini.Response
	Err   error
}

// ScriptedGenerator implements gemini.Generator from a fixed rule list and
// counts calls, so tests can assert that cache hits skip the provider.
type ScriptedGenerator struct {
	mu    sync.Mutex
	Rules []Rule
	calls int
}

// Generate returns the first rule whose Match substring occurs in the prompt.
func (g *ScriptedGenerator) Generate(_ context.Context, req gemini.Request) (*gemini.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	for _, r := range g.Rules {
		if strings.Contains(req.Prompt, r.Match) {
			if r.Err != nil {
				return nil, r.Err
			}
			return r.Resp, nil
		}
	}
	return nil, fmt.Errorf("testutil: no scripted response matches prompt %q", snippet(req.Prompt))
}

// Calls reports how many times Generate was invoked.
func (g *ScriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var _ gemini.Generator = (*ScriptedGenerator)(nil)

func snippet(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}

package writer

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

// ErrOutputNotEmpty is returned by Prepare when the target already holds
// data and Force is not set.
var ErrOutputNotEmpty = errors.New("output is not empty (use --force to replace it)")

// Sink stores the mirror. Paths are slash-separated and relative to the
// sink's root.
type Sink interface {
	// Prepare readies an empty target. Sinks refuse a non-empty target unless
	// they were created with Force, in which case they clear it.
	Prepare(ctx context.Context) error
	Put(ctx context.Context, path string, content []byte) error
	Close() error
}

// MemorySink keeps the mirror in memory. Dry runs write through one so the
// run reports exactly what would have been stored.
type MemorySink struct {
	Force bool

	mu    sync.Mutex
	files map[string][]byte
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (m *MemorySink) Prepare(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	if len(m.files) == 0 {
		return nil
	}
	if !m.Force {
		return ErrOutputNotEmpty
	}
	clear(m.files)
	return nil
}

func (m *MemorySink) Put(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = slices.Clone(content)
	return nil
}

func (m *MemorySink) Close() error { return nil }

// Paths returns the stored paths in sorted order.
func (m *MemorySink) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.files))
}

// Get returns a copy of the content stored at path.
func (m *MemorySink) Get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	return slices.Clone(b), ok
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/RenatoCabral2022/tonegrid/internal/metrics"
	"github.com/RenatoCabral2022/tonegrid/internal/model"
)

var (
	ErrNotFound     = errors.New("composition not found")
	ErrInvalidIndex = errors.New("invalid composition index")
)

// MaxIndex bounds arrangement indexes so a single request cannot force a
// huge sparse array into the file store.
const MaxIndex = 9999

// Store persists compositions keyed by arrangement index.
type Store interface {
	Save(ctx context.Context, index int, c model.Composition) error
	Load(ctx context.Context, index int) (model.Composition, error)
	Indexes(ctx context.Context) ([]int, error)
}

func checkIndex(index int) error {
	if index < 0 || index > MaxIndex {
		return fmt.Errorf("index %d: %w", index, ErrInvalidIndex)
	}
	return nil
}

// Memory is a Store held in process memory.
type Memory struct {
	mu           sync.RWMutex
	compositions map[int]model.Composition
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{compositions: make(map[int]model.Composition)}
}

func (m *Memory) Save(ctx context.Context, index int, c model.Composition) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.compositions[index] = clone(c)
	metrics.StoredCompositions.Set(float64(len(m.compositions)))
	return nil
}

func (m *Memory) Load(ctx context.Context, index int) (model.Composition, error) {
	if err := checkIndex(index); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.compositions[index]
	if !ok {
		return nil, fmt.Errorf("index %d: %w", index, ErrNotFound)
	}
	return clone(c), nil
}

func (m *Memory) Indexes(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, 0, len(m.compositions))
	for i := range m.compositions {
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

func clone(c model.Composition) model.Composition {
	if c == nil {
		return model.Composition{}
	}
	out := make(model.Composition, len(c))
	for i, s := range c {
		out[i] = model.Step{
			Time:      s.Time,
			Frequency: append([]float64(nil), s.Frequency...),
		}
	}
	return out
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/tonegrid/internal/metrics"
	"github.com/RenatoCabral2022/tonegrid/internal/model"
)

// File is a Store backed by one JSON document: an array indexed by
// arrangement index, with null for unused slots. Every Save rewrites the
// document through a temp file and rename.
type File struct {
	path   string
	logger *zap.Logger

	mu           sync.RWMutex
	compositions []model.Composition
}

// OpenFile loads the store at path, starting empty if the file does not exist.
func OpenFile(path string, logger *zap.Logger) (*File, error) {
	f := &File{path: path, logger: logger.With(zap.String("store", path))}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f.logger.Info("composition store not found, starting empty")
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read store: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.compositions); err != nil {
			return nil, fmt.Errorf("decode store: %w", err)
		}
	}
	f.logger.Info("composition store loaded", zap.Int("slots", len(f.compositions)))
	metrics.StoredCompositions.Set(float64(f.countLocked()))
	return f, nil
}

func (f *File) Save(ctx context.Context, index int, c model.Composition) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := make([]model.Composition, max(len(f.compositions), index+1))
	copy(next, f.compositions)
	next[index] = clone(c)

	if err := f.writeLocked(next); err != nil {
		return err
	}
	f.compositions = next
	metrics.StoredCompositions.Set(float64(f.countLocked()))
	return nil
}

func (f *File) Load(ctx context.Context, index int) (model.Composition, error) {
	if err := checkIndex(index); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if index >= len(f.compositions) || f.compositions[index] == nil {
		return nil, fmt.Errorf("index %d: %w", index, ErrNotFound)
	}
	return clone(f.compositions[index]), nil
}

func (f *File) Indexes(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]int, 0, len(f.compositions))
	for i, c := range f.compositions {
		if c != nil {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *File) countLocked() int {
	n := 0
	for _, c := range f.compositions {
		if c != nil {
			n++
		}
	}
	return n
}

func (f *File) writeLocked(compositions []model.Composition) error {
	data, err := json.Marshal(compositions)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

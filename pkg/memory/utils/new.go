// Package memoryutils is the memory utility package
package memoryutils

import (
	"fmt"
	"log/slog"

	"github.com/parchmentlabs/engram/pkg/dotdir"
	"github.com/parchmentlabs/engram/pkg/eventstream"
	"github.com/parchmentlabs/engram/pkg/llm"
	llmutils "github.com/parchmentlabs/engram/pkg/llm/utils"
	"github.com/parchmentlabs/engram/pkg/memory"
	"github.com/parchmentlabs/engram/pkg/memory/compress"
	"github.com/parchmentlabs/engram/pkg/memory/store"
	"github.com/parchmentlabs/engram/pkg/reader"
)

// NewManagerOpts configures NewManager.
type NewManagerOpts struct {
	// StoreDir is the directory holding the backing file. Empty means
	// the resolved .engram/ directory.
	StoreDir string

	// QuotaKB bounds the backing file size. Zero means the store default.
	QuotaKB uint

	// ModelProvider selects the generation provider. Empty disables
	// generation entirely; documents are still stored via the fallback
	// path. Commands that never compress pass empty here.
	ModelProvider string
	ModelTarget   string
	ModelName     string

	// Events receives document lifecycle events. Nil means no-op.
	Events eventstream.Publisher

	Logger *slog.Logger
}

// NewManager builds a fully wired memory manager from configuration
// values. It also returns the opened store so callers can reach
// store-level operations like file watching.
func NewManager(o *NewManagerOpts) (*memory.Manager, *store.Store, error) {
	storeDir := o.StoreDir
	if storeDir == "" {
		target, err := dotdir.NewManager().Target("")
		if err != nil {
			return nil, nil, fmt.Errorf("resolving store dir: %w", err)
		}
		storeDir = target
	}

	st, err := store.Open(store.Config{
		Dir:     storeDir,
		QuotaKB: o.QuotaKB,
		Logger:  o.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	var generator llm.Generator
	if o.ModelProvider != "" {
		generator, err = llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
			ProviderType: o.ModelProvider,
			TargetURL:    o.ModelTarget,
			Model:        o.ModelName,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	manager := memory.NewManager(memory.ManagerConfig{
		Store: st,
		Compressor: compress.New(compress.Config{
			Generator: generator,
			Logger:    o.Logger,
		}),
		Reader: reader.New(),
		Events: o.Events,
		Logger: o.Logger,
	})

	return manager, st, nil
}

// Package cfg dispatches several workflows. It avoids to start the program
// once for each workflow.
package cfg

import (
	"context"
	"fmt"
	"sync"

	"github.com/pelletier/go-toml"

	"github.com/kpotier/goraspa/pkg/ctxlog"
)

// Cfg is a structure where the types of workflows are stored. It can be
// instanced through the New method. The length of the Files slice must be equal
// to the length of the Types files. Each workflow requires a TOML file where
// its parameters are stored.
type Cfg struct {
	Types [][]string `toml:"types"`
	Files [][]string `toml:"files"`
}

// New returns an instance of the Cfg structure. It reads the TOML job file
// where Types and Files are stored and checks that every step names as many
// files as workflows, and that every workflow is known.
func New(path string) (Cfg, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return Cfg{}, fmt.Errorf("LoadFile: %w", err)
	}

	var cfg Cfg
	if err := tree.Unmarshal(&cfg); err != nil {
		return Cfg{}, fmt.Errorf("Unmarshal: %w", err)
	}

	if len(cfg.Files) != len(cfg.Types) {
		return Cfg{}, fmt.Errorf("%d steps in files, %d in types", len(cfg.Files), len(cfg.Types))
	}
	for step, types := range cfg.Types {
		if len(types) != len(cfg.Files[step]) {
			return Cfg{}, fmt.Errorf("step %d: %d files for %d workflows",
				step, len(cfg.Files[step]), len(types))
		}
		for _, name := range types {
			if !Known(name) {
				return Cfg{}, fmt.Errorf("step %d: workflow `%s` doesn't exist", step, name)
			}
		}
	}

	return cfg, nil
}

// Start dispatches and runs the workflows. The workflows of a step (e.g.
// Types: ["gcmc", "gcmc", "widom"]) run in parallel, each one submitting its
// own simulations; the steps run one after the other.
//
// It is a thread blocking method. If a workflow fails, the error is logged
// and the other workflows carry on. The number of failed workflows is
// returned.
func (c Cfg) Start(ctx context.Context) int {
	log := ctxlog.FromContext(ctx)

	var (
		wg     sync.WaitGroup
		mux    sync.Mutex
		failed int
	)
	launch := func(step, rtn int, name string) {
		ctx := ctxlog.WithLogger(ctx, log.With("step", step, "routine", rtn))
		err := Launch(ctx, name, c.Files[step][rtn])
		if err != nil {
			log.Error(fmt.Sprintf("Launch (step %d, routine %d)", step, rtn), "err", err)
			mux.Lock()
			failed++
			mux.Unlock()
		}
	}

	for step, types := range c.Types {
		if len(types) == 0 {
			continue
		}

		if len(types) > 1 {
			for rtn, name := range types[1:] { // For each workflow
				wg.Add(1)
				go func(step, rtn int, name string) {
					launch(step, rtn, name)
					wg.Done()
				}(step, rtn+1, name)
			}
		}

		launch(step, 0, types[0])
		wg.Wait()
	}
	return failed
}

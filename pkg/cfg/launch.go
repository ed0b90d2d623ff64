package cfg

import (
	"context"
	"fmt"

	"github.com/kpotier/goraspa/pkg/base"
	"github.com/kpotier/goraspa/pkg/gcmc"
	"github.com/kpotier/goraspa/pkg/gemc"
	"github.com/kpotier/goraspa/pkg/widom"
)

// Workflow is an interface that only contains one method: Start. Every
// workflow must have a Start method that runs the simulations until the end.
// It must be a thread blocking method.
type Workflow interface {
	Start(ctx context.Context) error
}

// Known tells whether name is a workflow Launch can start.
func Known(name string) bool {
	switch name {
	case base.Type, widom.Type, gcmc.Type, gemc.Type:
		return true
	}
	return false
}

// Launch launchs a specific workflow. It is a thread blocking method. The
// parameters required to launch the workflow must be in a file.
func Launch(ctx context.Context, name string, path string) error {
	var (
		err error
		wf  Workflow
	)

	switch name {
	case base.Type:
		wf, err = base.New(path)
	case widom.Type:
		wf, err = widom.New(path)
	case gcmc.Type:
		wf, err = gcmc.New(path)
	case gemc.Type:
		wf, err = gemc.New(path)
	default:
		return fmt.Errorf("workflow `%s` doesn't exist", name)
	}

	if err != nil {
		return fmt.Errorf("%s: New: %w", name, err)
	}

	err = wf.Start(ctx)
	if err != nil {
		return fmt.Errorf("%s: Start: %w", name, err)
	}

	return nil
}

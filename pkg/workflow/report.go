package workflow

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kpotier/goraspa/pkg/output"
	"github.com/kpotier/goraspa/pkg/util"
)

type stepDoc struct {
	Iteration int                `yaml:"iteration"`
	Cycles    int                `yaml:"cycles"`
	Timeout   bool               `yaml:"timeout,omitempty"`
	Converged map[string]bool    `yaml:"converged,omitempty"`
	Errors    map[string]float64 `yaml:"errors,omitempty"`
}

type reportDoc struct {
	Iterations int              `yaml:"iterations"`
	Converged  bool             `yaml:"converged"`
	Remote     string           `yaml:"remote,omitempty"`
	Results    *yaml.Node       `yaml:"results"`
	Warnings   []output.Warning `yaml:"warnings,omitempty"`
	History    []stepDoc        `yaml:"history"`
}

// Converged tells whether the last run of the report converged.
func (r *Report) Converged() bool {
	return len(r.History) > 0 && r.History[len(r.History)-1].Converged()
}

// results encodes the results in system order.
func (r *Report) results() (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if r.Params == nil {
		return n, nil
	}
	for _, name := range r.Params.SystemOrder() {
		res, ok := r.Results[name]
		if !ok {
			continue
		}
		var v yaml.Node
		if err := v.Encode(res); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, &v)
	}
	return n, nil
}

// Write writes the report to path. The file starts with the date and the
// settings of the workflow, followed by the results in YAML.
func (r *Report) Write(path string, settings ...interface{}) error {
	res, err := r.results()
	if err != nil {
		return fmt.Errorf("results: %w", err)
	}
	doc := reportDoc{
		Iterations: r.Iterations,
		Converged:  r.Converged(),
		Remote:     r.Remote,
		Results:    res,
		Warnings:   r.Warnings,
	}
	for _, s := range r.History {
		d := stepDoc{Iteration: s.Iteration, Cycles: s.Cycles, Timeout: s.Timeout}
		for _, o := range s.Outcomes {
			if d.Converged == nil {
				d.Converged = make(map[string]bool)
				d.Errors = make(map[string]float64)
			}
			d.Converged[o.Name] = o.Converged
			for k, v := range o.Errors {
				d.Errors[k] = v
			}
		}
		doc.History = append(doc.History, d)
	}

	f, err := util.Write(path, settings...)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("Encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	return f.Close()
}

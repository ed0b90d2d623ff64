package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kpotier/goraspa/pkg/cell"
	"github.com/kpotier/goraspa/pkg/cfg"
	"github.com/kpotier/goraspa/pkg/ctxlog"
	"github.com/kpotier/goraspa/pkg/input"
	"github.com/kpotier/goraspa/pkg/output"
	"github.com/kpotier/goraspa/pkg/params"
)

var runCmd = &cobra.Command{
	Use:   "run <job.toml>",
	Short: "Run the workflows listed in a job file",
	Long: `Run the workflows listed in a job file. The job file lists, step by
step, the types of workflow (base, widom, gcmc, gemc) and their TOML files:

  types = [["gcmc", "gcmc"], ["gemc"]]
  files = [["co2.toml", "ch4.toml"], ["xe.toml"]]

The workflows of a step run in parallel, the steps one after the other.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfg.New(args[0])
		if err != nil {
			return fmt.Errorf("New: %w", err)
		}
		if failed := c.Start(cmd.Context()); failed > 0 {
			return fmt.Errorf("%d workflow(s) failed", failed)
		}
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <params.yaml>",
	Short: "Print the RASPA input deck of a parameter file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := params.Load(args[0])
		if err != nil {
			return err
		}
		return input.Write(cmd.OutOrStdout(), p)
	},
}

var (
	parseSystem     string
	parseComponents int
)

var parseCmd = &cobra.Command{
	Use:   "parse <report>",
	Short: "Parse a RASPA report and print it in YAML",
	Long: `Parse a RASPA report and print it in YAML. Reports ending with .gz
are decompressed. The warnings of the report are logged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		b, err := output.ReadAll(f, args[0])
		if err != nil {
			return fmt.Errorf("ReadAll: %w", err)
		}
		report := string(b)
		if err := output.CheckFinished(report); err != nil {
			return err
		}

		res, warnings, err := output.Parse(strings.NewReader(report), parseSystem, parseComponents)
		if err != nil {
			return fmt.Errorf("Parse: %w", err)
		}
		log := ctxlog.FromContext(cmd.Context())
		for _, w := range warnings {
			log.Warn("raspa", "system", w.System, "line", w.Line)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("Encode: %w", err)
		}
		return enc.Close()
	},
}

var (
	cellsCIF       string
	cellsParams    cell.Params
	cellsThreshold float64
)

var cellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "Print the unit cells needed for a cutoff",
	Long: `Print the number of unit cells needed along each axis so that the
perpendicular widths of the supercell exceed the threshold, usually twice the
cutoff. The cell is read from --cif or given with --a, --b, --c, --alpha,
--beta and --gamma.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := cellsParams
		if cellsCIF != "" {
			var err error
			p, err = cell.LoadCIF(cellsCIF)
			if err != nil {
				return fmt.Errorf("LoadCIF: %w", err)
			}
		}
		if err := p.Check(); err != nil {
			return err
		}
		if cellsThreshold <= 0 {
			return fmt.Errorf("--threshold must be positive")
		}

		m := cell.Multipliers(p, cellsThreshold)
		fmt.Fprintf(cmd.OutOrStdout(), "%d %d %d\n", m[0], m[1], m[2])
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseSystem, "system", "s", "system", "Name of the system, used in the warnings")
	parseCmd.Flags().IntVarP(&parseComponents, "components", "n", 1, "Number of components of the simulation")

	cellsCmd.Flags().StringVar(&cellsCIF, "cif", "", "CIF file to read the cell from")
	cellsCmd.Flags().Float64Var(&cellsParams.A, "a", 0, "Length a (A)")
	cellsCmd.Flags().Float64Var(&cellsParams.B, "b", 0, "Length b (A)")
	cellsCmd.Flags().Float64Var(&cellsParams.C, "c", 0, "Length c (A)")
	cellsCmd.Flags().Float64Var(&cellsParams.Alpha, "alpha", 90, "Angle alpha (degrees)")
	cellsCmd.Flags().Float64Var(&cellsParams.Beta, "beta", 90, "Angle beta (degrees)")
	cellsCmd.Flags().Float64Var(&cellsParams.Gamma, "gamma", 90, "Angle gamma (degrees)")
	cellsCmd.Flags().Float64VarP(&cellsThreshold, "threshold", "t", 24, "Minimum perpendicular width (A)")
}

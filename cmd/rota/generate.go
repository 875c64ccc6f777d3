package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arnavshah/rota-api-go/pkg/config"
	"github.com/arnavshah/rota-api-go/pkg/report"
	"github.com/arnavshah/rota-api-go/pkg/rosterfile"
	"github.com/arnavshah/rota-api-go/pkg/scheduler"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	profilePath string
	seed        int64
	format      string
	maxAttempts int
	timeout     time.Duration
	workers     int
}

// schedulingConfig resolves the profile file and flag overrides
func (o *generateOptions) schedulingConfig(cmd *cobra.Command) (scheduler.Config, error) {
	cfg := scheduler.DefaultConfig()
	if o.profilePath != "" {
		var err error
		if cfg, err = config.LoadProfile(o.profilePath); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts = o.maxAttempts
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = o.workers
	}
	return cfg, nil
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a schedule for the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.schedulingConfig(cmd)
			if err != nil {
				return err
			}
			f, err := rosterfile.Load(root.rosterPath)
			if err != nil {
				return err
			}

			schedOpts := []scheduler.Option{scheduler.WithLogger(root.log)}
			if cmd.Flags().Changed("seed") {
				schedOpts = append(schedOpts, scheduler.WithSeed(opts.seed))
			}
			s := scheduler.NewScheduler(cfg, schedOpts...)

			res, err := s.Schedule(cmd.Context(), f.Roster())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch opts.format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Response(s.Config()))
			case "csv":
				return report.WriteCSV(out, res.Schedule, cfg.Days, cfg.Shifts, f.Names())
			case "table":
				if err := report.WriteTable(out, res.Schedule, cfg.Days, cfg.Shifts); err != nil {
					return err
				}
				fmt.Fprintln(out)
				if err := report.WriteWorkloads(out, res.Workloads); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nattempts: %d  seed: %d  preference: %.1f%%  fairness: %.1f%%\n",
					res.Attempts, res.Seed, scheduler.PreferenceScore(res.Stats), scheduler.FairnessScore(res.Workloads))
				return nil
			default:
				return fmt.Errorf("unknown format %q (want table, csv or json)", opts.format)
			}
		},
	}

	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "YAML scheduling profile (days, shifts, quota, ...)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Seed for a reproducible schedule")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "table", "Output format: table, csv or json")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", scheduler.DefaultMaxAttempts, "Maximum scheduling attempts")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", scheduler.DefaultTimeout, "Maximum time spent searching")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Concurrent attempts")
	return cmd
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the roster against the scheduling constraints without scheduling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.schedulingConfig(cmd)
			if err != nil {
				return err
			}
			f, err := rosterfile.Load(root.rosterPath)
			if err != nil {
				return err
			}
			if err := scheduler.Check(f.Roster(), cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "roster OK: %d employees for %d slots of %d\n",
				len(f.Employees), len(cfg.Days)*len(cfg.Shifts), cfg.Quota)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "YAML scheduling profile")
	return cmd
}

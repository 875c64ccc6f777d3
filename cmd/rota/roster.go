package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/arnavshah/rota-api-go/pkg/config"
	"github.com/arnavshah/rota-api-go/pkg/models"
	"github.com/arnavshah/rota-api-go/pkg/rosterfile"
	"github.com/arnavshah/rota-api-go/pkg/scheduler"
	"github.com/spf13/cobra"
)

func newRosterCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Edit the roster file",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rosterfile.Load(root.rosterPath)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFIRST\tSECOND")
			for _, e := range f.Employees {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Prefs.First, e.Prefs.Second)
			}
			return tw.Flush()
		},
	}

	var name, profilePath string
	add := &cobra.Command{
		Use:   "add <id> <first-pref> <second-pref>",
		Short: "Add or replace an employee",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[1] == args[2] {
				return fmt.Errorf("preferences must differ, got %q twice", args[1])
			}
			shifts := scheduler.DefaultShifts
			if profilePath != "" {
				cfg, err := config.LoadProfile(profilePath)
				if err != nil {
					return err
				}
				shifts = cfg.Shifts
			}
			for _, pref := range args[1:] {
				if !contains(shifts, pref) {
					return fmt.Errorf("unknown shift %q (want one of %v)", pref, shifts)
				}
			}
			f, err := rosterfile.Load(root.rosterPath)
			if err != nil {
				return err
			}
			f.Upsert(models.Employee{
				ID:    args[0],
				Name:  name,
				Prefs: models.Preferences{First: args[1], Second: args[2]},
			})
			if err := f.Save(root.rosterPath); err != nil {
				return err
			}
			root.log.WithField("employee", args[0]).Info("employee saved")
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().StringVar(&profilePath, "profile", "", "YAML scheduling profile whose shifts the preferences must name")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rosterfile.Load(root.rosterPath)
			if err != nil {
				return err
			}
			if !f.Remove(args[0]) {
				return fmt.Errorf("employee %s not found", args[0])
			}
			return f.Save(root.rosterPath)
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/solnotes/logging"
	"github.com/eringen/solnotes/rebuild"
)

func newRebuildCmd(e *env) *cobra.Command {
	var (
		reason string
		recent int
	)
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Trigger the deploy webhook, or show recent rebuilds",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := rebuild.OpenJobLog(e.cfg.RebuildDBPath)
			if err != nil {
				return err
			}
			defer jobs.Close()
			out := cmd.OutOrStdout()

			if recent > 0 {
				list, err := jobs.Recent(cmd.Context(), recent)
				if err != nil {
					return err
				}
				for _, j := range list {
					fmt.Fprintf(out, "%s  %-9s  %s  %s\n", j.CreatedAt.Format("2006-01-02 15:04:05"), j.Status, j.Reason, j.Error)
				}
				return nil
			}

			hook := rebuild.NewHook(e.cfg.WebhookURL, nil)
			if !hook.Configured() {
				return rebuild.ErrNotConfigured
			}
			q := rebuild.NewQueue(hook,
				rebuild.WithJobLog(jobs),
				rebuild.WithLogger(logging.ModuleLogger(e.logs, logging.ModuleRebuild)))
			q.Enqueue(reason)
			q.Close()

			last, err := jobs.Recent(cmd.Context(), 1)
			if err != nil {
				return err
			}
			if len(last) == 0 {
				return fmt.Errorf("rebuild was not recorded")
			}
			if last[0].Status != rebuild.StatusSucceeded {
				return fmt.Errorf("rebuild %s: %s", last[0].Status, last[0].Error)
			}
			fmt.Fprintf(out, "rebuild triggered (%s)\n", last[0].ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "manual", "reason recorded in the job log")
	cmd.Flags().IntVar(&recent, "recent", 0, "list the last N rebuild jobs instead of triggering one")
	return cmd
}

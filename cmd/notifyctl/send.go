package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wanotif/internal/app"
	"wanotif/internal/config"
	"wanotif/internal/logging"
)

// send: one real dispatch using the same configuration as the services.
func sendCmd() *cobra.Command {
	var (
		f        projectFlags
		logLevel string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the template and status text to one recipient",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWhatsApp()
			if err != nil {
				return err
			}
			log := logging.New(cmd.ErrOrStderr(), "notifyctl", "text", logLevel)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			seq, err := app.NewSequencer(ctx, cfg, config.AWSConfig{}, log)
			if err != nil {
				return err
			}
			out := seq.Dispatch(ctx, f.request())
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Success {
				return fmt.Errorf("dispatch %s failed: %s", out.DispatchID, out.Error.Message)
			}
			return nil
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("phone")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for both sends")
	return cmd
}

package cmd

import (
	"fmt"
	"time"

	"github.com/smazurov/campreview/internal/nats"
	"github.com/spf13/cobra"
)

// CreateControlCmd creates the control command.
func CreateControlCmd() *cobra.Command {
	var (
		url    string
		reason string
	)

	cmd := &cobra.Command{
		Use:       "control {resume|pause}",
		Short:     "Resume or pause a running preview over NATS",
		Long:      `Publishes a lifecycle command on campreview.control.<action> for a campreview instance started with --nats-url or --nats-embedded.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{nats.ActionResume, nats.ActionPause},
		RunE: func(c *cobra.Command, args []string) error {
			msg := nats.ControlMessage{
				Action:    args[0],
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Reason:    reason,
			}
			if err := nats.SendControl(url, msg); err != nil {
				return fmt.Errorf("failed to send %s: %w", msg.Action, err)
			}
			fmt.Fprintf(c.OutOrStdout(), "sent %s to %s\n", msg.Action, url)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "server", "nats://127.0.0.1:4222", "NATS server URL")
	cmd.Flags().StringVar(&reason, "reason", "cli", "Reason recorded with the command")

	return cmd
}

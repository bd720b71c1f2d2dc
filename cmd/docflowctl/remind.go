package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/bootstrap"
	"github.com/avatarctic/docflow/internal/core/domain/reminder"
	"github.com/avatarctic/docflow/internal/infrastructure/uisp"
)

func newRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind [payment|final]",
		Short: "Send one batch of payment or final reminders",
		Long: `Fetch overdue clients from the billing platform and send them a reminder,
exactly like the scheduled trigger does. APP_ENV=development limits the batch
to the configured test client.`,
		ValidArgs: []string{string(reminder.KindPayment), string(reminder.KindFinal)},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE:      runRemind,
	}
	cmd.Flags().Duration("timeout", 5*time.Minute, "Abort the batch after this long")
	return cmd
}

func runRemind(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	kind := reminder.Kind(args[0])

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := bootstrap.NewLogger(cfg.Log)

	svc, _, err := bootstrap.NewReminderService(cfg, uisp.NewClient(&cfg.UISP, logger), nil, logger)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, timeout)
	defer cancel()

	report, err := svc.Send(ctx, kind)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

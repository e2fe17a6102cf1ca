package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/bot"
	"taskboard/internal/config"
	"taskboard/internal/livequery"
	"taskboard/internal/logger"
	"taskboard/internal/ops"
	"taskboard/internal/service"
	"taskboard/internal/session"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot, deadline scheduler and ops endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Close()
			return runServe(cmd.Context(), cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	if err := cfg.RequireToken(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	src, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	ledger, err := openLedger(ctx, cfg, src, log)
	if err != nil {
		return err
	}

	hub := livequery.NewHub(src.tasks, src.categories)
	sessions := session.NewProvider(src.users, log)
	if err := sessions.Restore(ctx); err != nil {
		return err
	}

	reminderSvc := service.NewReminderService(src.tasks, src.users, nil, ledger, log)
	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}
	log.Infow("bot authorized", "account", api.Self.UserName)

	telegramBot := bot.New(api, bot.Deps{
		Sessions:   sessions,
		Auth:       service.NewAuthService(src.users, cfg.LoginRatePerMinute, log),
		Tasks:      service.NewTaskService(hub.Tasks(), hub.Categories(), log),
		Categories: service.NewCategoryService(hub.Categories(), log),
		Reminders:  reminderSvc,
		Users:      src.users,
		Source:     hub,
		Location:   loc,
		Logger:     log,
	})
	reminderSvc.SetSender(telegramBot)

	scheduler := service.NewSchedulerService(loc)
	sweep := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reminderSvc.Sweep(jobCtx, time.Now().In(loc)); err != nil && !errors.Is(err, context.Canceled) {
			log.Warnw("deadline sweep", "error", err)
		}
	}
	if cfg.DeadlineScanInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.DeadlineScanInterval, sweep); err != nil {
			return err
		}
	}
	if cfg.DeadlineDailyAt != "" {
		if _, err := scheduler.ScheduleDaily(cfg.DeadlineDailyAt, sweep); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	go followChanges(ctx, src, hub, scheduler, cfg.ChangePollInterval, log)

	opsServer := ops.New(log, src.checks)
	go func() {
		if err := opsServer.Start(ctx, cfg.OpsAddr); err != nil {
			log.Errorw("ops server stopped", "error", err)
		}
	}()

	log.Infow("taskboard started", "backend", cfg.StoreBackend)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Infow("shutdown complete")
	return nil
}

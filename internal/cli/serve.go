package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evanesaias-afk/taxbox/internal/api"
	"github.com/evanesaias-afk/taxbox/internal/config"
	"github.com/evanesaias-afk/taxbox/internal/discord"
	"github.com/evanesaias-afk/taxbox/internal/infra/events"
	"github.com/evanesaias-afk/taxbox/internal/ledger"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, the weekly sweep, and the admin API",
	Long: `Connect to Discord, register the slash commands on the configured guild,
start the weekly reminder sweep, and serve the local admin API. Runs until
interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	token := config.Token()
	if token == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}

	log := newLogger()
	slog.SetDefault(log)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	lcfg, err := serviceConfig(cfg)
	if err != nil {
		return err
	}
	// Role and notifier adapters need the bot client, which does not exist
	// yet; they are wired after the gateway is built.
	svc := ledger.NewService(store, nil, nil, lcfg, log)

	// Refuse to start on a ledger we cannot read. A corrupt store must be
	// repaired by hand, never silently reset.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err := svc.AccountOf(ctx, "startup-probe"); err != nil {
		return fmt.Errorf("ledger store unusable: %w", err)
	}

	gw, err := discord.New(token, svc, cfg, log)
	if err != nil {
		return err
	}
	svc.SetRoleDirectory(discord.NewRoles(gw.Client(), gw.GuildID()))
	svc.SetNotifier(discord.NewDMNotifier(gw.Client(), cfg.Tax))

	if len(cfg.Events.Brokers) > 0 {
		pub := events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		defer pub.Close()
		svc.SetEventPublisher(pub)
		log.Info("event publishing enabled", slog.Any("brokers", cfg.Events.Brokers))
	}

	sweeper, err := newSweeper(svc, cfg, log)
	if err != nil {
		return err
	}
	go sweeper.Run(ctx)

	if cfg.API.Enabled {
		srv := api.NewServer(svc)
		srv.EnableMetrics()
		httpSrv := &http.Server{Addr: cfg.API.Addr, Handler: srv.Handler()}
		go func() {
			log.Info("admin api listening", slog.String("addr", cfg.API.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin api failed", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()
	}

	// Blocks until ctx is cancelled by a signal.
	return gw.Run(ctx)
}

func newSweeper(svc *ledger.Service, cfg config.Config, log *slog.Logger) (*ledger.Sweeper, error) {
	loc, err := cfg.SweepLocation()
	if err != nil {
		return nil, err
	}
	hour, minute, err := cfg.SweepTime()
	if err != nil {
		return nil, err
	}
	weekday, err := cfg.SweepWeekday()
	if err != nil {
		return nil, err
	}
	return ledger.NewSweeper(svc, ledger.Schedule{
		Weekday: weekday,
		Hour:    hour,
		Minute:  minute,
		Loc:     loc,
	}, log), nil
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/guardbot/internal/bot"
	"github.com/iamwavecut/guardbot/internal/config"
	handlers "github.com/iamwavecut/guardbot/internal/handlers/chat"
	"github.com/iamwavecut/guardbot/internal/i18n"
	"github.com/iamwavecut/guardbot/internal/infrastructure/telegram"
	"github.com/iamwavecut/guardbot/internal/lifecycle"
	"github.com/iamwavecut/guardbot/internal/moderation"
	"github.com/iamwavecut/guardbot/internal/observability"
	"github.com/iamwavecut/guardbot/internal/policy/permissions"
)

const (
	pollTimeoutSeconds = 60
	pollClientGrace    = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	log.SetFormatter(&config.Formatter{Plain: cfg.LogPlain})
	log.SetOutput(os.Stdout)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("cant load config")
	}
	log.SetLevel(log.Level(cfg.LogLevel))
	i18n.SetDefaultLanguage(cfg.DefaultLanguage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithField("error", err.Error()).Fatal("bot stopped")
	}
	log.Info("bot stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing := observability.Init()

	// Long polling holds a request open for pollTimeoutSeconds, so it gets its
	// own client; moderation actions use the short request timeout.
	actionAPI, err := api.NewBotAPIWithClient(cfg.TelegramAPIToken, api.APIEndpoint, &http.Client{Timeout: cfg.RequestTimeout})
	if err != nil {
		return errors.Wrap(err, "cant initialize bot api")
	}
	pollAPI, err := api.NewBotAPIWithClient(cfg.TelegramAPIToken, api.APIEndpoint, &http.Client{
		Timeout: pollTimeoutSeconds*time.Second + pollClientGrace,
	})
	if err != nil {
		return errors.Wrap(err, "cant initialize polling bot api")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		actionAPI.Debug = true
	}
	log.WithField("bot", actionAPI.Self.UserName).Info("authorized")

	guard, store := newGuard(cfg, telegram.NewOperations(actionAPI), actionAPI.Self.UserName)

	runtime := lifecycle.NewRuntime(
		moderation.NewSweeper(store, cfg.Moderation.SweepSchedule),
		observability.NewMetricsServer(cfg.MetricsAddr),
		lifecycle.Hooks{Name: "tracing", OnStop: shutdownTracing},
	)
	if err := runtime.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultShutdownTimeout)
		defer cancel()
		if err := runtime.Stop(stopCtx); err != nil {
			log.WithField("error", err.Error()).Warn("runtime stopped with errors")
		}
	}()

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = pollTimeoutSeconds
	updateConfig.AllowedUpdates = bot.AllowedUpdates
	updates, updateErrs := bot.GetUpdatesChans(ctx, pollAPI, updateConfig)
	dispatcher := bot.NewDispatcher(bot.NewUpdateProcessor(guard), cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx, updates)
	})
	g.Go(func() error {
		select {
		case err, ok := <-updateErrs:
			if ok && err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newGuard(cfg config.Config, ops *telegram.Operations, botUserName string) (*handlers.Guard, *moderation.Store) {
	admins := permissions.NewAdminSet(cfg.Moderation.AdminIDs...)
	if admins.Len() == 0 {
		log.Warn("no admins configured, /warn and /ban are disabled")
	}

	store := moderation.NewStore(moderation.Limits{
		NewbieWindow:     cfg.Moderation.NewbieWindow,
		FloodWindow:      cfg.Moderation.FloodWindow,
		FloodMaxMessages: cfg.Moderation.FloodMaxMessages,
		MembersCapacity:  cfg.Moderation.MembersCapacity,
	})
	keywords := moderation.NewMatcher(cfg.Moderation.MatchMode, orDefault(cfg.Moderation.BadKeywords, moderation.DefaultBadKeywords))
	classifier := moderation.NewClassifier(keywords, orDefault(cfg.Moderation.BadDomains, moderation.DefaultBadDomains))
	texts := moderation.Texts{Language: cfg.DefaultLanguage, ChatName: cfg.ChatName}

	engine := moderation.NewEngine(store, classifier, ops, moderation.EngineConfig{
		Admins:         admins,
		TrustAdminHint: cfg.Moderation.TrustAnonymousAdmins,
		Texts:          texts,
	})
	adminCommands := moderation.NewAdminCommands(admins, ops, texts)
	return handlers.NewGuard(engine, adminCommands, ops, texts, botUserName), store
}

func orDefault(values, defaults []string) []string {
	if len(values) == 0 {
		return defaults
	}
	return values
}

package di

import (
	"context"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/interview-scheduler/internal/adapters/engine"
	"github.com/mikey/interview-scheduler/internal/adapters/gcal"
	"github.com/mikey/interview-scheduler/internal/adapters/gmailbox"
	"github.com/mikey/interview-scheduler/internal/adapters/httpapi"
	"github.com/mikey/interview-scheduler/internal/adapters/smtpout"
	"github.com/mikey/interview-scheduler/internal/config"
	"github.com/mikey/interview-scheduler/internal/core"
	"github.com/mikey/interview-scheduler/internal/factory"
	"github.com/mikey/interview-scheduler/internal/logging"
	"github.com/mikey/interview-scheduler/internal/ports"
	"github.com/mikey/interview-scheduler/internal/senders"
	"github.com/mikey/interview-scheduler/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register history factory and archive
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.HistoryFactory) (core.HistoryArchive, error) {
		return f.CreateHistoryArchive()
	}); err != nil {
		return nil, err
	}

	// Register session store
	if err := container.Provide(func(cfg *config.Config, archive core.HistoryArchive, logger *zap.Logger) *core.SessionStore {
		return core.NewSessionStore(cfg.GetMail().Sender, archive, logger)
	}); err != nil {
		return nil, err
	}

	// Register body normalizer and sender matcher
	if err := container.Provide(utils.NewBodyNormalizer); err != nil {
		return nil, err
	}
	if err := container.Provide(func(logger *zap.Logger) core.SenderMatcher {
		return senders.NewMatcher(logger)
	}); err != nil {
		return nil, err
	}

	// Register engine notifier
	if err := container.Provide(func(cfg *config.Config, normalizer *utils.BodyNormalizer, logger *zap.Logger) (core.EngineNotifier, error) {
		engineCfg := cfg.GetEngine()
		timeout, err := cfg.GetDuration("engine.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid engine timeout: %w", err)
		}
		return engine.NewClient(engineCfg.BaseURL, timeout, normalizer, cfg.GetInt("engine.max_body_size"), logger), nil
	}); err != nil {
		return nil, err
	}

	// Register inbox gateway
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.InboxGateway, error) {
		gmailCfg := cfg.GetMail().Gmail
		return gmailbox.NewGateway(context.Background(), gmailCfg.User, gmailCfg.CredentialsFile, gmailCfg.TokenFile, gmailCfg.Label, logger)
	}); err != nil {
		return nil, err
	}

	// Register mail sender
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.MailSender {
		smtpCfg := cfg.GetMail().SMTP
		return smtpout.NewSender(smtpCfg.Address, smtpCfg.HelloHostname, logger)
	}); err != nil {
		return nil, err
	}

	// Register calendar client
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.CalendarClient, error) {
		gmailCfg := cfg.GetMail().Gmail
		return gcal.NewClient(context.Background(), gmailCfg.CredentialsFile, gmailCfg.TokenFile, cfg.GetCalendar().EventLocation, logger)
	}); err != nil {
		return nil, err
	}

	// Register the polling loop
	if err := container.Provide(func(
		store *core.SessionStore,
		inbox core.InboxGateway,
		notifier core.EngineNotifier,
		match core.SenderMatcher,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.Poller, error) {
		callTimeout, err := cfg.GetDuration("scheduler.call_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler call timeout: %w", err)
		}
		return core.NewPoller(store, inbox, notifier, match, logger,
			int64(cfg.GetInt("scheduler.batch_size")), callTimeout), nil
	}); err != nil {
		return nil, err
	}

	// Register the scheduler service
	if err := container.Provide(func(
		store *core.SessionStore,
		poller *core.Poller,
		notifier core.EngineNotifier,
		mail core.MailSender,
		calendar core.CalendarClient,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.SchedulerService, error) {
		interval, err := cfg.GetDuration("scheduler.interval")
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler interval: %w", err)
		}
		callTimeout, err := cfg.GetDuration("scheduler.call_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler call timeout: %w", err)
		}
		return core.NewSchedulerService(store, poller, notifier, mail, calendar, logger,
			cfg.GetMail().Sender, cfg.GetCalendar().ID, interval, callTimeout), nil
	}); err != nil {
		return nil, err
	}

	// Register the HTTP request layer
	if err := container.Provide(func(service *core.SchedulerService, cfg *config.Config, logger *zap.Logger) ports.Server {
		return httpapi.NewServer(service, logger, cfg.GetServer().ListenAddress)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kestrelhq/kestrel/internal/config"
	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/notifier"
	redisclient "github.com/kestrelhq/kestrel/internal/redis"
	"github.com/kestrelhq/kestrel/pkg/mailer"
	"github.com/kestrelhq/kestrel/pkg/sms"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	rdb, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	var mail mailer.Sender
	switch cfg.MailDriver {
	case "smtp":
		mail = mailer.NewSMTPSender(cfg.SMTPAddr, cfg.MailFrom, cfg.SMTPUser, cfg.SMTPPassword)
	default:
		mail = mailer.NewPreviewSender()
	}

	var texts sms.Sender
	switch cfg.SMSDriver {
	case "http":
		texts = sms.NewHTTPSender(cfg.SMSAPIURL, cfg.SMSFrom, cfg.SMSAccountSID, cfg.SMSAuthToken)
	default:
		texts = sms.NewPreviewSender()
	}

	dispatcher := notifier.NewDispatcher(mail, texts, cfg.AppURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		subscriber := events.NewSubscriber(rdb.Client, events.SubscriberConfig{
			Group:    cfg.NotifierGroup,
			Consumer: cfg.NotifierConsumer,
			Stream:   events.UserEventsStream,
			Handler:  dispatcher.HandleUserEvent,
		})
		if err := subscriber.Start(ctx); err != nil {
			log.Error().Err(err).Msg("user events subscriber stopped")
		}
	}()

	go func() {
		subscriber := events.NewSubscriber(rdb.Client, events.SubscriberConfig{
			Group:    cfg.NotifierGroup,
			Consumer: cfg.NotifierConsumer,
			Stream:   events.AuthEventsStream,
			Handler:  dispatcher.HandleAuthEvent,
		})
		if err := subscriber.Start(ctx); err != nil {
			log.Error().Err(err).Msg("auth events subscriber stopped")
		}
	}()

	log.Info().
		Str("mail_driver", cfg.MailDriver).
		Str("sms_driver", cfg.SMSDriver).
		Msg("notifier started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	cancel()
}

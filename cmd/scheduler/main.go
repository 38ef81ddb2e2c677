package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/emailzus/reminder-engine/internal/config"
	"github.com/emailzus/reminder-engine/internal/dispatch"
	"github.com/emailzus/reminder-engine/internal/engine"
	"github.com/emailzus/reminder-engine/internal/repository"
	"github.com/emailzus/reminder-engine/pkg/logger"
	"github.com/emailzus/reminder-engine/pkg/pg"
	"github.com/emailzus/reminder-engine/pkg/prom"
	"github.com/emailzus/reminder-engine/pkg/redis"
)

// The scheduler owns the two periodic jobs: the dispatch sweep on a short
// cadence, and the daily subscription expiry pass shortly after midnight.
func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	db, err := pg.CreateReadWrite(readConf, writeConf, config.Get().AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	var claims *engine.Claims
	if config.Get().RedisAddr != "" {
		redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{config.Get().RedisAddr},
			ClientName: "default",
			DB:         config.Get().RedisDatabase,
			Username:   config.Get().RedisUsername,
			Password:   config.Get().RedisPassword,
		})
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		claims = engine.NewClaims(redisAdap, config.Get().ClaimTTL)
	}

	if config.Get().AppDebugMetricsAddr != "" {
		if err := prom.Create("scheduler", config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed creating metrics registry", "error", err)
		} else {
			go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}
	}

	reminderRepo := repository.NewReminderRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	deliveryLogRepo := repository.NewDeliveryLogRepository(db)

	emailDispatcher := dispatch.NewEmailDispatcher(dispatch.EmailConfig{
		APIKey:            config.Get().SendgridAPIKey,
		FromAddress:       config.Get().MailFromAddress,
		FromName:          config.Get().MailFromName,
		AuthorizedDomains: config.Get().MailAuthorizedDomains,
		AttachmentRoot:    config.Get().MailAttachmentRoot,
	})
	smsDispatcher := dispatch.NewSMSDispatcher(dispatch.SMSConfig{
		AccountSID: config.Get().TwilioAccountSID,
		AuthToken:  config.Get().TwilioAuthToken,
		FromNumber: config.Get().TwilioFromNumber,
		Timeout:    config.Get().DispatchTimeout,
	})

	sweep := engine.NewSweep(engine.SweepConfig{
		Reminders:       reminderRepo,
		Logs:            deliveryLogRepo,
		Quota:           engine.NewQuotaGate(deliveryLogRepo),
		Renderer:        &engine.Renderer{AssetBaseURL: config.Get().AssetBaseUrl},
		Email:           emailDispatcher,
		SMS:             smsDispatcher,
		Claims:          claims,
		DispatchTimeout: config.Get().DispatchTimeout,
		SMSRegion:       config.Get().DefaultSMSRegion,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runSweepLoop(ctx, sweep, config.Get().SweepInterval)
	go runExpiryLoop(ctx, subscriptionRepo)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("scheduler shutting down")
	cancel()
}

func runSweepLoop(ctx context.Context, sweep *engine.Sweep, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := sweep.ProcessDueReminders(ctx)
			if err != nil {
				logger.Error("sweep failed", "error", err)
				continue
			}
			logger.Info("sweep tick done", "processed", result.Processed, "errors", result.Errors)
		}
	}
}

// runExpiryLoop expires overdue subscriptions once per day, starting with an
// immediate pass so a restarted scheduler catches up right away.
func runExpiryLoop(ctx context.Context, subs *repository.SubscriptionRepository) {
	expire := func() {
		changed, err := subs.ExpireOverdue(ctx, time.Now())
		if err != nil {
			logger.Error("subscription expiry pass failed", "error", err)
			return
		}
		if changed > 0 {
			logger.Info("subscriptions expired", "count", changed)
		}
	}

	expire()

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(untilNextMidnight(time.Now())):
			expire()
		}
	}
}

func untilNextMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}

package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/emailzus/reminder-engine/internal/config"
	"github.com/emailzus/reminder-engine/internal/dispatch"
	"github.com/emailzus/reminder-engine/internal/engine"
	"github.com/emailzus/reminder-engine/internal/handlers"
	"github.com/emailzus/reminder-engine/internal/repository"
	"github.com/emailzus/reminder-engine/internal/services"
	xhttp "github.com/emailzus/reminder-engine/pkg/http"
	"github.com/emailzus/reminder-engine/pkg/logger"
	"github.com/emailzus/reminder-engine/pkg/pg"
	"github.com/emailzus/reminder-engine/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 30))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

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

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	// redis is optional; without it the sweep runs without dispatch claims
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

	reminderRepo := repository.NewReminderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
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

	reminderService := services.NewReminderService(reminderRepo, customerRepo, templateRepo)
	templateService := services.NewTemplateService(templateRepo, subscriptionRepo)
	healthService := services.NewHealthService()

	reminderHandler := handlers.NewReminderHandler(reminderService, sweep)
	templateHandler := handlers.NewTemplateHandler(templateService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterReminderRoutes(g, reminderHandler)
	handlers.RegisterTemplateRoutes(g, templateHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
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

package main

import (
	"context"
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/widescopeindustries/ai-receptionist/cmd/bootstrap"
	"github.com/widescopeindustries/ai-receptionist/pkg/calendar"
	"github.com/widescopeindustries/ai-receptionist/pkg/config"
	"github.com/widescopeindustries/ai-receptionist/pkg/llm"
	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
	"github.com/widescopeindustries/ai-receptionist/pkg/notification"
	"github.com/widescopeindustries/ai-receptionist/pkg/voice"
)

func main() {
	// 1. Parse Command Line Parameters
	mode := flag.String("mode", "", "running environment (development, test, production)")
	init := flag.Bool("init", false, "initialize database")
	flag.Parse()

	// 2. Set Environment Variables
	if *mode != "" {
		os.Setenv("APP_ENV", *mode)
	}

	// 3. Load Global Configuration
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	if err := config.GlobalConfig.Validate(); err != nil {
		panic("config validation failed: " + err.Error())
	}

	// 4. Load Log Configuration
	if err := logger.Init(&config.GlobalConfig.Log, config.GlobalConfig.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 5. Print Banner
	bootstrap.PrintBanner("banner.txt", config.GlobalConfig.Server.Name)

	// 6. Load Data Source
	db, err := bootstrap.SetupDatabase(os.Stdout, &bootstrap.Options{
		AutoMigrate: *init,
		SeedNonProd: *init,
	})
	if err != nil {
		logger.Error("database setup failed", zap.Error(err))
		return
	}

	addr := config.GlobalConfig.Server.Addr
	logger.Info("checked config",
		zap.String("addr", addr),
		zap.String("db-driver", config.GlobalConfig.Database.Driver),
		zap.String("mode", config.GlobalConfig.Server.Mode))

	// 7. Wire External Collaborators
	llmLog := logrus.New()
	generator := llm.NewClient(llm.DefaultConfig(), llmLog)

	var booker voice.AppointmentBooker
	calendarCfg := config.GlobalConfig.Services.Calendar
	if calendarCfg.CredentialsFile != "" {
		service, err := calendar.NewService(context.Background(),
			calendarCfg.CredentialsFile, calendarCfg.CalendarID, calendarCfg.TimeZone)
		if err != nil {
			logger.Error("calendar setup failed, booking disabled", zap.Error(err))
		} else {
			booker = service
		}
	} else {
		logger.Warn("no calendar credentials configured, booking disabled")
	}

	mailer := notification.NewMailer(config.GlobalConfig.Services.Mail)
	var linkSender voice.SetupLinkSender
	if mailer.Configured() {
		linkSender = mailer
	} else {
		logger.Warn("mail not configured, setup links disabled")
	}
	webhookNotifier := notification.NewWebhookNotifier(config.GlobalConfig.Services.NotifyWebhookURL)

	// 8. Wire the Conversation Engine
	store := voice.NewStore()
	resolver := voice.NewProfileResolver(db)
	archive := voice.NewCallArchive(db, mailer, webhookNotifier, config.GlobalConfig.Services.NotifyEmail)
	dispatcher := voice.NewDispatcher(booker, linkSender, config.GlobalConfig.Conversation.DispatchTimeout)
	processor := voice.NewProcessor(store, generator, dispatcher, archive, voice.ProcessorConfig{
		Greeting:       config.GlobalConfig.Conversation.Greeting,
		MaxTurns:       config.GlobalConfig.Conversation.MaxTurns,
		MaxDuration:    config.GlobalConfig.Conversation.MaxDuration,
		NoInputLimit:   config.GlobalConfig.Conversation.NoInputLimit,
		MaxGenFailures: config.GlobalConfig.Conversation.MaxLLMFailures,
	})

	// 9. Serve
	if config.GlobalConfig.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := voice.NewWebhookHandler(processor, resolver, store, db, voice.Integrations{
		Calendar: booker != nil,
		Mail:     mailer.Configured(),
		Webhook:  webhookNotifier.Configured(),
	})
	handler.RegisterRoutes(router)

	logger.Info("receptionist listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

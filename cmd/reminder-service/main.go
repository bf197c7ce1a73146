package main

import (
	"context"
	"log"
	"net/http"

	"github.com/groupcal/reminder-service/internal/api"
	reminders_service "github.com/groupcal/reminder-service/internal/business/reminders"
	"github.com/groupcal/reminder-service/internal/config"
	"github.com/groupcal/reminder-service/internal/database"
	"github.com/groupcal/reminder-service/internal/database/calendar"
	"github.com/groupcal/reminder-service/internal/database/reminder"
	"github.com/groupcal/reminder-service/internal/database/user"
	"github.com/groupcal/reminder-service/internal/model"
	"github.com/groupcal/reminder-service/internal/notifications"
	"github.com/groupcal/reminder-service/internal/notifications/email"
	"github.com/groupcal/reminder-service/internal/notifications/push"
	"github.com/groupcal/reminder-service/internal/pkg/clock"
	"github.com/groupcal/reminder-service/internal/pkg/fcm"
	"github.com/groupcal/reminder-service/internal/pkg/jwt"
	"github.com/groupcal/reminder-service/internal/redis"
	"github.com/robfig/cron/v3"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}

	db, err := database.NewPGX(ctx)
	if err != nil {
		logger.Fatalw("unable to initialize db", "err", err)
	}

	redisPool := redis.NewRedisPool(logger)
	locks := redis.NewLocksRepository(redisPool, logger)

	remindersRepository := reminder.NewRepository()
	usersRepository := user.NewRepository()
	calendarsRepository := calendar.NewRepository()

	fcmService, err := fcm.NewService(ctx)
	if err != nil {
		logger.Fatalw("unable to initialize fcm service", "err", err)
	}

	emailProvider, err := email.NewProvider(logger)
	if err != nil {
		logger.Fatalw("unable to initialize email provider", "err", err)
	}

	registry := notifications.NewRegistry(logger)
	registry.RegisterProvider(model.NotificationTypeEmail, emailProvider)
	registry.RegisterProvider(model.NotificationTypePush, push.NewPushProvider(fcmService, logger))
	registry.RegisterProvider(model.NotificationTypeDisplay, push.NewDisplayProvider(fcmService, logger))
	registry.RegisterProvider(model.NotificationTypeAudio, push.NewAudioProvider(fcmService, logger))

	remindersService, err := reminders_service.NewService(
		db,
		logger,
		clock.New(),
		remindersRepository,
		usersRepository,
		calendarsRepository,
		registry,
		locks,
	)
	if err != nil {
		logger.Fatalw("unable to initialize reminders service", "err", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(config.ReminderCron(), func() {
		if err := remindersService.ProcessReminders(ctx); err != nil {
			logger.Errorw("processing tick failed", "err", err)
		}
	}); err != nil {
		logger.Fatalw("unable to schedule processing tick", "spec", config.ReminderCron(), "err", err)
	}
	c.Start()
	closer.Bind(func() {
		<-c.Stop().Done()
	})

	a, err := api.NewApi(logger, jwt.NewManager(), remindersService)
	if err != nil {
		logger.Fatalw("unable to initialize api", "err", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  a,
		ErrorLog: errLogger,
	}

	logger.Infow("Started server", "port", config.Port())
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}

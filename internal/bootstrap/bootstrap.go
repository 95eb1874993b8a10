// Package bootstrap connects the stores named by the environment and wires
// repositories, services and the expiry sweeper for the server and the ops CLI.
package bootstrap

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mentorloop/config"
	"github.com/yoockh/mentorloop/internal/cache"
	"github.com/yoockh/mentorloop/internal/providers/calendar"
	"github.com/yoockh/mentorloop/internal/repositories"
	mongorepo "github.com/yoockh/mentorloop/internal/repositories/mongo"
	pgrepo "github.com/yoockh/mentorloop/internal/repositories/postgres"
	"github.com/yoockh/mentorloop/internal/services"
	"github.com/yoockh/mentorloop/internal/workers"
)

type Container struct {
	Config *config.App
	Log    *logrus.Logger

	Sessions repositories.SessionRepository

	SessionService      services.SessionService
	AvailabilityService services.AvailabilityService
	BookingService      services.BookingService
	Sweeper             *workers.ExpirySweeper
}

// Connect initializes Mongo (required), Redis and Postgres (both optional)
// and ensures Mongo indexes.
func Connect(ctx context.Context, log *logrus.Logger) error {
	if err := config.InitMongo(); err != nil {
		return err
	}
	log.Info("mongodb connected")

	if err := config.EnsureMongoIndexes(ctx); err != nil {
		return err
	}

	ok, err := config.InitRedis()
	if err != nil {
		return err
	}
	if ok {
		log.Info("redis connected")
	} else {
		log.Warn("redis not configured: slot cache off, sweep lock is process-local")
	}

	ok, err = config.InitPostgres()
	if err != nil {
		return err
	}
	if ok {
		log.Info("postgres connected, migrations applied")
	} else {
		log.Warn("postgres not configured: session timeline disabled")
	}
	return nil
}

// Close releases whatever Connect, or the individual config.Init* helpers,
// opened. Calling it again is a no-op.
func Close(ctx context.Context) {
	if config.RedisClient != nil {
		_ = config.RedisClient.Close()
		config.RedisClient = nil
	}
	if config.PostgresDB != nil {
		if sqlDB, err := config.PostgresDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		config.PostgresDB = nil
	}
	if config.MongoClient != nil {
		_ = config.MongoClient.Disconnect(ctx)
		config.MongoClient = nil
	}
}

// Wire builds the object graph on top of the connected clients.
func Wire(cfg *config.App, log *logrus.Logger) *Container {
	db := config.MongoDatabase()

	sessions := mongorepo.NewSessionRepo(db, log)
	mentors := mongorepo.NewMentorRepo(db)
	mentees := mongorepo.NewMenteeRepo(db)
	requests := mongorepo.NewMentorshipRequestRepo(db)
	notifications := mongorepo.NewNotificationRepo(db)

	var events repositories.SessionEventRepository
	if config.PostgresDB != nil {
		events = pgrepo.NewSessionEventRepo(config.PostgresDB)
	}

	// Interfaces stay nil, not typed-nil, when Redis is absent.
	var slotCache cache.Cache
	var locker cache.Locker = cache.NewLocalLocker()
	if config.RedisClient != nil {
		slotCache = cache.NewRedisCache(config.RedisClient)
		locker = cache.NewRedisLocker(config.RedisClient)
	}

	cal := calendar.NewGoogleCalendar(calendar.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})

	timeline := services.NewTimeline(events, log)
	completion := services.NewCompletion(mentors, mentees, cfg.BadgeRules, log)
	sched := cfg.Scheduling()

	c := &Container{
		Config:   cfg,
		Log:      log,
		Sessions: sessions,
	}
	c.SessionService = services.NewSessionService(sessions, mentors, completion, timeline, log, time.Now)
	c.AvailabilityService = services.NewAvailabilityService(mentors, cal, slotCache, sched, log, time.Now)
	c.BookingService = services.NewBookingService(services.BookingDeps{
		Mentors:  mentors,
		Mentees:  mentees,
		Requests: requests,
		Sessions: sessions,
		Calendar: cal,
		Notifier: services.NewNotifier(notifications, log),
		Timeline: timeline,
		Cache:    slotCache,
		Log:      log,
		Now:      time.Now,
	}, sched)
	c.Sweeper = &workers.ExpirySweeper{
		Sessions:       sessions,
		Service:        c.SessionService,
		Locker:         locker,
		Logger:         log,
		Interval:       cfg.Sweep.Interval,
		ScheduledGrace: cfg.Sweep.ScheduledGrace,
		ActiveGrace:    cfg.Sweep.ActiveGrace,
		NumWorkers:     cfg.Sweep.Workers,
		BatchSize:      int64(cfg.Sweep.Batch),
	}
	return c
}

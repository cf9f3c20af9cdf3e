package app

import (
	"context"
	"time"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/config"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/discovery"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/immutability"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity"
	integrityPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/remote"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/worker"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/adapter/storage"
	appCtx "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/context"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/mysql"
	"gorm.io/gorm"
)

type app struct {
	db  *gorm.DB
	cfg config.Config

	jobService          jobPort.Service
	serverService       serverPort.Service
	siteService         sitePort.Service
	verificationService integrityPort.Service

	worker    *worker.Worker
	scheduler *worker.ScanScheduler
}

func (a *app) DB() *gorm.DB {
	return a.db
}

func (a *app) Config() config.Config {
	return a.cfg
}

func (a *app) jobServiceWithDB(db *gorm.DB) jobPort.Service {
	return job.NewJobService(storage.NewJobRepo(db))
}

func (a *app) JobService(ctx context.Context) jobPort.Service {
	db := appCtx.GetDB(ctx)
	if db == nil {
		if a.jobService == nil {
			a.jobService = a.jobServiceWithDB(a.db)
		}
		return a.jobService
	}

	return a.jobServiceWithDB(db)
}

func (a *app) serverServiceWithDB(db *gorm.DB) serverPort.Service {
	return server.NewServerService(storage.NewServerRepo(db))
}

func (a *app) ServerService(ctx context.Context) serverPort.Service {
	db := appCtx.GetDB(ctx)
	if db == nil {
		if a.serverService == nil {
			a.serverService = a.serverServiceWithDB(a.db)
		}
		return a.serverService
	}

	return a.serverServiceWithDB(db)
}

func (a *app) siteServiceWithDB(db *gorm.DB) sitePort.Service {
	return site.NewSiteService(storage.NewSiteRepo(db))
}

func (a *app) SiteService(ctx context.Context) sitePort.Service {
	db := appCtx.GetDB(ctx)
	if db == nil {
		if a.siteService == nil {
			a.siteService = a.siteServiceWithDB(a.db)
		}
		return a.siteService
	}

	return a.siteServiceWithDB(db)
}

func (a *app) verificationServiceWithDB(db *gorm.DB) integrityPort.Service {
	return integrity.NewVerificationService(
		storage.NewVerificationRepo(db),
		a.siteServiceWithDB(db),
		a.jobServiceWithDB(db),
	)
}

func (a *app) VerificationService(ctx context.Context) integrityPort.Service {
	db := appCtx.GetDB(ctx)
	if db == nil {
		if a.verificationService == nil {
			a.verificationService = a.verificationServiceWithDB(a.db)
		}
		return a.verificationService
	}

	return a.verificationServiceWithDB(db)
}

func (a *app) setDB() error {
	db, err := mysql.NewMysqlConnection(mysql.DBConnOptions{
		Host:     a.cfg.DB.Host,
		Port:     a.cfg.DB.Port,
		Username: a.cfg.DB.Username,
		Password: a.cfg.DB.Password,
		Database: a.cfg.DB.Database,
	})
	if err != nil {
		return err
	}
	mysql.GormMigrations(db)
	a.db = db
	return nil
}

func (a *app) executorFactory() remote.Factory {
	return remote.NewFactory(remote.Options{
		ConnectTimeout:  time.Duration(a.cfg.SSH.ConnectTimeoutSec) * time.Second,
		KeepAlive:       time.Duration(a.cfg.SSH.KeepAliveSec) * time.Second,
		CommandTimeout:  time.Duration(a.cfg.SSH.CommandTimeoutSec) * time.Second,
		MaxOpsPerSecond: a.cfg.SSH.MaxOpsPerSecond,
	})
}

func NewApp(cfg config.Config) (AppContainer, error) {
	a := &app{
		cfg: cfg,
	}
	if err := a.setDB(); err != nil {
		return nil, err
	}

	a.jobService = a.jobServiceWithDB(a.db)
	a.serverService = a.serverServiceWithDB(a.db)
	a.siteService = a.siteServiceWithDB(a.db)
	a.verificationService = a.verificationServiceWithDB(a.db)

	factory := a.executorFactory()
	verificationRepo := storage.NewVerificationRepo(a.db)

	engines := worker.Engines{
		Discovery:    discovery.NewScanner(a.serverService, a.siteService, a.jobService, factory),
		Integrity:    integrity.NewVerifier(verificationRepo, a.siteService, a.serverService, a.jobService, factory),
		Immutability: immutability.NewManager(a.siteService, a.serverService, factory),
	}

	a.worker = worker.NewWorker(
		a.jobService,
		engines,
		time.Duration(cfg.Worker.PollIntervalSec)*time.Second,
	)

	a.scheduler = worker.NewScanScheduler(
		a.serverService,
		a.jobService,
		time.Duration(cfg.Worker.ScanIntervalMin)*time.Minute,
		time.Duration(cfg.Worker.ScheduleCheckSec)*time.Second,
	)

	return a, nil
}

func NewMustApp(cfg config.Config) AppContainer {
	a, err := NewApp(cfg)
	if err != nil {
		panic(err)
	}
	return a
}

// StartWorker begins the queue consumer.
func (a *app) StartWorker() {
	if a.worker != nil {
		a.worker.Start()
	}
}

// StopWorker halts the queue consumer, waiting for the in-flight job.
func (a *app) StopWorker() {
	if a.worker != nil {
		a.worker.Stop()
	}
}

// StartScheduler begins the periodic scan scheduler.
func (a *app) StartScheduler() {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
}

// StopScheduler halts the periodic scan scheduler.
func (a *app) StopScheduler() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}

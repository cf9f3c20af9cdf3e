package app

import (
	"context"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/config"
	integrityPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/integrity/port"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
	sitePort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/site/port"
	"gorm.io/gorm"
)

type AppContainer interface {
	JobService(ctx context.Context) jobPort.Service
	ServerService(ctx context.Context) serverPort.Service
	SiteService(ctx context.Context) sitePort.Service
	VerificationService(ctx context.Context) integrityPort.Service

	StartWorker()
	StopWorker()
	StartScheduler()
	StopScheduler()

	Config() config.Config
	DB() *gorm.DB
}

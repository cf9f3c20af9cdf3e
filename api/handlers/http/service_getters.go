package http

import (
	"context"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/api/service"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/app"
)

// job service transient instance handler
func jobServiceGetter(appContainer app.AppContainer) ServiceGetter[*service.JobService] {
	return func(ctx context.Context) *service.JobService {
		return service.NewJobService(appContainer.JobService(ctx))
	}
}

// server service transient instance handler
func serverServiceGetter(appContainer app.AppContainer) ServiceGetter[*service.ServerService] {
	return func(ctx context.Context) *service.ServerService {
		return service.NewServerService(appContainer.ServerService(ctx), appContainer.JobService(ctx))
	}
}

// site service transient instance handler
func siteServiceGetter(appContainer app.AppContainer) ServiceGetter[*service.SiteService] {
	return func(ctx context.Context) *service.SiteService {
		return service.NewSiteService(appContainer.SiteService(ctx), appContainer.JobService(ctx))
	}
}

// verification service transient instance handler
func verificationServiceGetter(appContainer app.AppContainer) ServiceGetter[*service.VerificationService] {
	return func(ctx context.Context) *service.VerificationService {
		return service.NewVerificationService(appContainer.VerificationService(ctx))
	}
}

package http

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/app"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/config"
)

func Run(appContainer app.AppContainer, cfg config.ServerConfig) error {
	router := fiber.New(fiber.Config{
		AppName: "APK WordPress Ops",
	})
	router.Use(helmet.New())
	router.Use(TraceMiddleware())
	router.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} TraceID: ${locals:traceID}\n",
		Output: os.Stdout,
	}))

	router.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := router.Group("/api/v1", setAppContext)

	registerJobAPI(appContainer, api.Group("/jobs"))
	registerServerAPI(appContainer, api.Group("/servers"))
	registerSiteAPI(appContainer, api.Group("/sites"))
	registerVerificationAPI(appContainer, api)

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		},
		PreferServerCipherSuites: true,
	}

	router.Server().TLSConfig = tlsConfig
	if !cfg.SslEnabled {
		return router.Listen(fmt.Sprintf(":%d", cfg.HttpPort))
	}
	return router.ListenTLS(fmt.Sprintf(":%d", cfg.HttpPort), cfg.Cert, cfg.Key)
}

func registerJobAPI(appContainer app.AppContainer, router fiber.Router) {
	jobSvcGetter := jobServiceGetter(appContainer)
	router.Post("/", setTransaction(appContainer.DB()), CreateJob(jobSvcGetter))
	router.Get("/:id", GetJobByID(jobSvcGetter))
	router.Get("/", GetJobs(jobSvcGetter))
}

func registerServerAPI(appContainer app.AppContainer, router fiber.Router) {
	serverSvcGetter := serverServiceGetter(appContainer)
	router.Post("/", setTransaction(appContainer.DB()), CreateServer(serverSvcGetter))
	router.Get("/:id", GetServerByID(serverSvcGetter))
	router.Get("/", ListServers(serverSvcGetter))
	router.Put("/:id", setTransaction(appContainer.DB()), UpdateServer(serverSvcGetter))
	router.Delete("/:id", setTransaction(appContainer.DB()), DeleteServer(serverSvcGetter))

	router.Post("/:id/scan", setTransaction(appContainer.DB()), TriggerServerScan(serverSvcGetter))
}

func registerSiteAPI(appContainer app.AppContainer, router fiber.Router) {
	siteSvcGetter := siteServiceGetter(appContainer)
	verificationSvcGetter := verificationServiceGetter(appContainer)

	router.Get("/", ListSites(siteSvcGetter))
	router.Get("/:id", GetSiteByID(siteSvcGetter))
	router.Post("/:id/lock", setTransaction(appContainer.DB()), LockSite(siteSvcGetter))
	router.Post("/:id/unlock", setTransaction(appContainer.DB()), UnlockSite(siteSvcGetter))
	router.Post("/:id/fix-permissions", setTransaction(appContainer.DB()), FixSitePermissions(siteSvcGetter))

	router.Post("/:id/verifications", setTransaction(appContainer.DB()), StartVerification(verificationSvcGetter))
	router.Get("/:id/verifications", GetSiteVerifications(verificationSvcGetter))
}

func registerVerificationAPI(appContainer app.AppContainer, router fiber.Router) {
	verificationSvcGetter := verificationServiceGetter(appContainer)
	router.Get("/verifications/:id", GetVerificationByID(verificationSvcGetter))
}

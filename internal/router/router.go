// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/cache"
	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/handlers"
	"github.com/Afoxcute/sear/internal/middleware"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

const version = "1.0.0"

// Services is every ledger service the API and the background jobs share.
type Services struct {
	Ledger      *database.Ledger
	IPs         *services.IPService
	Licenses    *services.LicenseService
	Royalties   *services.RoyaltyService
	Payments    *services.PaymentService
	Arbitrators *services.ArbitratorService
	Disputes    *services.DisputeService
	Transfers   *services.TransferService
	Metadata    *services.MetadataService
	Admin       *services.AdminService
}

// NewServices wires the services over one ledger. gateway, fetcher and
// metadataCache may be nil.
func NewServices(ledger *database.Ledger, db *gorm.DB, cfg *config.Config, gateway services.PaymentGateway,
	fetcher services.MetadataFetcher, metadataCache *cache.BigCache) *Services {
	return &Services{
		Ledger:      ledger,
		IPs:         services.NewIPService(ledger),
		Licenses:    services.NewLicenseService(ledger),
		Royalties:   services.NewRoyaltyService(ledger),
		Payments:    services.NewPaymentService(ledger, gateway, cfg.Payment),
		Arbitrators: services.NewArbitratorService(ledger, cfg.Ledger),
		Disputes:    services.NewDisputeService(ledger, cfg.Ledger),
		Transfers:   services.NewTransferService(ledger),
		Metadata:    services.NewMetadataService(ledger, fetcher, metadataCache),
		Admin:       services.NewAdminService(ledger, db),
	}
}

func Initialize(db *gorm.DB, cfg *config.Config, svc *Services) *gin.Engine {
	// Initialize handlers
	ipAssetHandler := handlers.NewIPAssetHandler(svc.IPs, svc.Transfers, svc.Metadata)
	licenseHandler := handlers.NewLicenseHandler(svc.Licenses)
	royaltyHandler := handlers.NewRoyaltyHandler(svc.Royalties)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments)
	disputeHandler := handlers.NewDisputeHandler(svc.Disputes)
	arbitratorHandler := handlers.NewArbitratorHandler(svc.Arbitrators)
	adminHandler := handlers.NewAdminHandler(svc.Admin)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	operator := cfg.Ledger.OperatorAddress
	authRequired := middleware.AuthRequired(operator)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins...))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.OptionalAuth(operator))
	if cfg.Server.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)
		r.Use(limiter.Middleware())
	}
	r.Use(middleware.AuditLogMiddleware(db))

	r.GET("/health", func(c *gin.Context) {
		ledgerVersion, err := svc.Ledger.Version(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"version":        version,
			"ledger_version": ledgerVersion,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		ipAssets := v1.Group("/ip-assets")
		{
			ipAssets.GET("", ipAssetHandler.GetIPAssets)
			ipAssets.GET("/:id", ipAssetHandler.GetIPAsset)
			ipAssets.GET("/:id/metadata", ipAssetHandler.GetMetadata)
			ipAssets.GET("/:id/transferable", ipAssetHandler.CanTransfer)
			ipAssets.GET("/:id/transfers", ipAssetHandler.GetTransferHistory)
			ipAssets.GET("/:id/licenses", licenseHandler.GetAssetLicenses)
			ipAssets.GET("/:id/disputes", disputeHandler.GetAssetDisputes)
			ipAssets.GET("/:id/payments", royaltyHandler.GetPayments)
			ipAssets.GET("/:id/royalties/breakdown", royaltyHandler.PreviewBreakdown)
			ipAssets.GET("/:id/royalties/:account", royaltyHandler.GetRoyaltyInfo)

			// Authenticated routes
			protected := ipAssets.Group("")
			protected.Use(authRequired)
			{
				protected.POST("", ipAssetHandler.RegisterIP)
				protected.POST("/:id/transfer", ipAssetHandler.TransferIP)
				protected.POST("/:id/licenses", licenseHandler.MintLicense)
				protected.POST("/:id/revenue", royaltyHandler.PayRevenue)
				protected.POST("/:id/royalties/claim", royaltyHandler.ClaimRoyalties)
			}
		}

		licenses := v1.Group("/licenses")
		{
			licenses.GET("", licenseHandler.GetLicenses)
			licenses.GET("/:id", licenseHandler.GetLicense)
			licenses.PUT("/:id/revoke", authRequired, licenseHandler.RevokeLicense)
		}

		payments := v1.Group("/payments")
		payments.Use(authRequired)
		{
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
		}

		disputes := v1.Group("/disputes")
		{
			disputes.GET("", disputeHandler.GetDisputes)
			disputes.GET("/:id", disputeHandler.GetDispute)

			protected := disputes.Group("")
			protected.Use(authRequired)
			{
				protected.POST("", disputeHandler.RaiseDispute)
				protected.POST("/:id/arbitrators", disputeHandler.AssignArbitrators)
				protected.POST("/:id/decisions", disputeHandler.SubmitDecision)
				protected.POST("/:id/resolve-cooldown", disputeHandler.ResolveAfterCooldown)
				protected.POST("/:id/resolve-deadline", disputeHandler.ResolveAfterDeadline)
				protected.POST("/:id/resolve-unassigned", disputeHandler.ResolveWithoutArbitrators)
			}
		}

		arbitrators := v1.Group("/arbitrators")
		{
			arbitrators.GET("", arbitratorHandler.GetArbitrators)
			arbitrators.GET("/:address", arbitratorHandler.GetArbitrator)
			arbitrators.GET("/:address/active-disputes", arbitratorHandler.GetActiveDisputeCount)
			arbitrators.POST("", authRequired, arbitratorHandler.RegisterArbitrator)
			arbitrators.POST("/unstake", authRequired, arbitratorHandler.Unstake)
		}

		admin := v1.Group("/admin")
		admin.Use(authRequired, middleware.OperatorRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
			admin.POST("/licenses/expire", licenseHandler.ExpireLicenses)
			admin.POST("/arbitrators/reconcile", arbitratorHandler.Reconcile)
		}
	}

	return r
}

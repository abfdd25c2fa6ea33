package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"flyttman/cmd/fx/config_fx"
	"flyttman/cmd/fx/controllers_fx"
	"flyttman/cmd/fx/db_fx"
	"flyttman/cmd/fx/events_fx"
	"flyttman/cmd/fx/logger_fx"
	"flyttman/cmd/fx/mail_fx"
	"flyttman/cmd/fx/metrics_fx"
	"flyttman/cmd/fx/notification_fx"
	"flyttman/cmd/fx/payment_service_fx"
	"flyttman/cmd/fx/tip_fx"
	"flyttman/internal/api/controllers"
	"flyttman/internal/config"
	"flyttman/pkg/middleware"
	"flyttman/pkg/utils"
)

func main() {
	// Amounts are rendered as JSON numbers, e.g. "tip_amount": 100.5
	decimal.MarshalJSONWithoutQuotes = true

	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		metrics_fx.Module,
		db_fx.Module,
		events_fx.Module,
		mail_fx.Module,
		tip_fx.Module,
		payment_service_fx.Module,
		notification_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type RouterParams struct {
	fx.In

	Config             *config.Config
	Log                *zap.Logger
	Gatherer           prometheus.Gatherer
	TipController      *controllers.TipController
	AdminTipController *controllers.AdminTipController
	WebhookController  *controllers.WebhookController
	HealthController   *controllers.HealthController
}

func ProvideRouter(p RouterParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Log.Named("http")))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(p.Config.CORSOrigins))
	r.Use(middleware.ErrorExposureMiddleware(!p.Config.IsProduction()))

	RegisterRoutes(r, p)

	return r
}

func RegisterRoutes(r *gin.Engine, p RouterParams) {
	auth := middleware.JWTAuthMiddleware([]byte(p.Config.JWTSecret))

	r.GET("/healthz", p.HealthController.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))

	// Stripe signs the raw body; nothing may read it before the controller.
	r.POST("/webhook", p.WebhookController.HandleStripeWebhook)

	orderGroup := r.Group("/order", auth, middleware.RoleMiddleware(utils.RoleCustomer))
	orderGroup.POST("/:orderId/tip", p.TipController.AddTip)

	driverGroup := r.Group("/driver", auth, middleware.RoleMiddleware(utils.RoleDriver))
	driverGroup.GET("/tips", p.TipController.GetDriverTips)

	supplierGroup := r.Group("/supplier", auth, middleware.RoleMiddleware(utils.RoleSupplier))
	supplierGroup.GET("/driver-tips", p.TipController.GetSupplierTips)

	adminGroup := r.Group("/admin", auth, middleware.RoleMiddleware(utils.RoleSuperAdmin, utils.RoleFinancialAdmin))
	adminGroup.GET("/tips", p.AdminTipController.GetAdminTips)
	adminGroup.POST("/mark-paid", p.AdminTipController.MarkTipsAsPaid)
}

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	bookingdomain "github.com/smallbiznis/bookneo/internal/booking/domain"
	"github.com/smallbiznis/bookneo/internal/config"
	"github.com/smallbiznis/bookneo/internal/observability"
	obsmiddleware "github.com/smallbiznis/bookneo/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bookneo/internal/observability/metrics"
	obstracing "github.com/smallbiznis/bookneo/internal/observability/tracing"
	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"github.com/smallbiznis/bookneo/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger, shutdowner fx.Shutdowner, _ *Server) {
	log = log.Named("http.server")
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	bookings      bookingdomain.Service
	orders        paymentdomain.OrderService
	reconciler    paymentdomain.Reconciler
	notifications paymentdomain.NotificationLog
	email         email.Provider
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Bookings      bookingdomain.Service
	Orders        paymentdomain.OrderService
	Reconciler    paymentdomain.Reconciler
	Notifications paymentdomain.NotificationLog
	Email         email.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.handlers"),
		bookings:      p.Bookings,
		orders:        p.Orders,
		reconciler:    p.Reconciler,
		notifications: p.Notifications,
		email:         p.Email,
	}
	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Gateway orders --------
	api.POST("/razorpay/create-order", s.CreatePaymentOrder)
	api.GET("/razorpay/order/:orderId", s.GetPaymentOrder)
	api.POST("/razorpay/refund", s.RefundPayment)

	// -------- Webhooks --------
	api.POST("/webhooks/razorpay", s.HandleRazorpayWebhook)

	// -------- Bookings --------
	api.PATCH("/bookings/:id/payment", s.UpdateBookingPayment)
	api.POST("/bookings/:id/send-confirmation", s.SendBookingConfirmation)

	// -------- Audit --------
	api.GET("/payments/notifications", s.ListPaymentNotifications)
}

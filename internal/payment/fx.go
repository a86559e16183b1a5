package payment

import (
	"github.com/smallbiznis/bookneo/internal/config"
	"github.com/smallbiznis/bookneo/internal/payment/dedup"
	"github.com/smallbiznis/bookneo/internal/payment/domain"
	"github.com/smallbiznis/bookneo/internal/payment/gateway"
	"github.com/smallbiznis/bookneo/internal/payment/repository"
	paymentservice "github.com/smallbiznis/bookneo/internal/payment/service"
	"github.com/smallbiznis/bookneo/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	dedup.Module,
	fx.Provide(repository.Provide),
	fx.Provide(func(h *config.GatewayCredentialsHolder) gateway.CredentialsSource { return h }),
	fx.Provide(func(p gateway.Params) domain.Gateway { return gateway.New(p) }),
	fx.Provide(fx.Annotate(paymentservice.NewService, fx.As(new(domain.OrderService)))),
	fx.Provide(fx.Annotate(paymentservice.NewNotificationLog, fx.As(new(domain.NotificationLog)))),
	fx.Provide(fx.Annotate(webhook.NewService, fx.As(new(domain.Reconciler)))),
)

package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/smallbiznis/bookneo/internal/payment/domain"
	"github.com/smallbiznis/bookneo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NotificationLogParams struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo paymentdomain.Repository
}

// NotificationLog serves the webhook delivery audit trail.
type NotificationLog struct {
	db   *gorm.DB
	log  *zap.Logger
	repo paymentdomain.Repository
}

func NewNotificationLog(p NotificationLogParams) *NotificationLog {
	return &NotificationLog{
		db:   p.DB,
		log:  p.Log.Named("payment.notifications"),
		repo: p.Repo,
	}
}

func (s *NotificationLog) List(ctx context.Context, req paymentdomain.ListNotificationsRequest) (paymentdomain.ListNotificationsResponse, error) {
	page := pagination.Pagination{PageToken: strings.TrimSpace(req.PageToken), PageSize: int(req.PageSize)}
	limit := page.Limit()

	items, err := s.repo.ListNotifications(ctx, s.db, paymentdomain.NotificationFilter{
		BookingID: strings.TrimSpace(req.BookingID),
		PaymentID: strings.TrimSpace(req.PaymentID),
		Outcome:   strings.TrimSpace(req.Outcome),
	}, page)
	if err != nil {
		return paymentdomain.ListNotificationsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(limit), func(item *paymentdomain.NotificationRecord) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        strconv.FormatInt(item.ID.Int64(), 10),
			CreatedAt: item.ReceivedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > limit {
		items = items[:limit]
	}

	resp := paymentdomain.ListNotificationsResponse{Notifications: make([]paymentdomain.NotificationRecord, 0, len(items))}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	for _, item := range items {
		resp.Notifications = append(resp.Notifications, *item)
	}
	return resp, nil
}

var _ paymentdomain.NotificationLog = (*NotificationLog)(nil)

package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderStatus is one entry of an order's append-only status history.
// An order holds each status at most once.
type OrderStatus struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OrderId         int             `gorm:"not null;uniqueIndex:idx_order_status,priority:1;index:idx_order_status_ts,priority:1" json:"order_id"`
	Status          OrderStatusType `gorm:"size:1;not null;uniqueIndex:idx_order_status,priority:2" json:"status"`
	CreateTimestamp time.Time       `gorm:"not null;precision:6;index:idx_order_status_ts,priority:2" json:"create_timestamp"`
	Comment         *string         `gorm:"size:255" json:"comment"`
}

type NewOrderStatus struct {
	Status          string     `json:"status"`
	CreateTimestamp *time.Time `json:"create_timestamp"`
	Comment         *string    `json:"comment" validate:"omitempty,max=255"`
}

func (s OrderStatus) StatusName() string {
	return s.Status.Name()
}

// AppendOrderStatus records a new status for the order.
//
// Checks, in order: the order exists, the order is not closed or cancelled,
// the status is valid, the order does not already carry it.
func AppendOrderStatus(ctx context.Context, orderId int, input *NewOrderStatus) (*OrderStatus, error) {
	ctx, span := tracer.Start(ctx, "models.AppendOrderStatus", trace.WithAttributes(attribute.Int("order.id", orderId)))
	defer span.End()

	var entry *OrderStatus
	err := utils.WithEntityLock(ctx, utils.LedgerLockKey("order_status", orderId), "models", "AppendOrderStatus", func() error {
		db := config.GetDB()
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var order Order
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderId).Error; err != nil {
				return translateNotFound(err)
			}

			var existing []OrderStatus
			if err := tx.Where("order_id = ?", orderId).Find(&existing).Error; err != nil {
				return err
			}
			for _, terminal := range TerminalOrderStatuses {
				for _, s := range existing {
					if s.Status == terminal {
						return &utils.TerminalStateError{Status: terminal.Name()}
					}
				}
			}

			status, err := ParseOrderStatus(input.Status)
			if err != nil {
				return utils.NewValidationError("status", err.Error())
			}
			if err := utils.ValidateStruct(input); err != nil {
				return err
			}
			var latest *time.Time
			for i, s := range existing {
				if s.Status == status {
					return &utils.DuplicateStatusError{Status: status.Name()}
				}
				if latest == nil || s.CreateTimestamp.After(*latest) {
					latest = &existing[i].CreateTimestamp
				}
			}

			entry = &OrderStatus{
				OrderId: orderId,
				Status:  status,
				Comment: normalizeComment(input.Comment),
			}
			if input.CreateTimestamp != nil {
				entry.CreateTimestamp = input.CreateTimestamp.UTC().Truncate(time.Microsecond)
			} else {
				entry.CreateTimestamp = nextLedgerTimestamp(latest)
			}
			if err := tx.Create(entry).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return &utils.DuplicateStatusError{Status: status.Name()}
				}
				return err
			}
			return nil
		})
	})
	if err != nil {
		var terminalErr *utils.TerminalStateError
		var duplicateErr *utils.DuplicateStatusError
		if !utils.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) &&
			!errors.As(err, &terminalErr) && !errors.As(err, &duplicateErr) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}

	config.LogInfo(config.GetLogger(), "models", "AppendOrderStatus", "status appended", logrus.Fields{
		"order_id": orderId,
		"status":   entry.StatusName(),
	})
	publishOrderEvent(ctx, "order.status_appended", entry)
	return entry, nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListOrderStatuses returns the order's statuses, newest first.
func ListOrderStatuses(ctx context.Context, orderId int) ([]*OrderStatus, error) {
	if err := utils.ValidateResourceId[Order](ctx, orderId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var results []*OrderStatus
	if err := db.WithContext(ctx).Where("order_id = ?", orderId).
		Order("create_timestamp DESC").Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetRecentOrderStatus(ctx context.Context, orderId int) (*OrderStatus, error) {
	if err := utils.ValidateResourceId[Order](ctx, orderId); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var status OrderStatus
	if err := db.WithContext(ctx).Where("order_id = ?", orderId).
		Order("create_timestamp DESC").Order("id DESC").
		First(&status).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &status, nil
}

func GetOrderStatus(ctx context.Context, statusId int) (*OrderStatus, error) {
	return FetchModel[OrderStatus](ctx, statusId)
}

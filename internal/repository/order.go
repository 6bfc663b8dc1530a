package repository

import (
	"context"
	"errors"
	"evcharge-storefront/internal/model"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	// CreateWithLines writes the order and its lines in one transaction.
	// A second order for the same checkout session fails with
	// ErrDuplicateOrder.
	CreateWithLines(ctx context.Context, order *model.Order, lines []model.OrderLine) error
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error)
	ListByUserID(ctx context.Context, userID string) ([]*model.Order, error)
	// UpdateStatus moves the order to status when its current status is one
	// of from. It reports whether a row changed.
	UpdateStatus(ctx context.Context, orderID uint, from []model.OrderStatus, status model.OrderStatus) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) CreateWithLines(ctx context.Context, order *model.Order, lines []model.OrderLine) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.Lines = nil
		if err := tx.Create(order).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: %w", ErrDuplicateOrder, err)
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return fmt.Errorf("insert order lines: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		order.ID = 0
		return err
	}

	order.Lines = lines
	return nil
}

func (r *orderRepoImpl) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	return r.findOne(ctx, "stripe_session_id = ?", sessionID)
}

func (r *orderRepoImpl) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	return r.findOne(ctx, "payment_intent_id = ?", paymentIntentID)
}

func (r *orderRepoImpl) findOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where(query, arg).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, orderID uint, from []model.OrderStatus, status model.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

package repository

import (
	"context"
	"evcharge-storefront/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(number, userID, sessionID string) *model.Order {
	return &model.Order{
		OrderNumber:     number,
		UserID:          userID,
		UserEmail:       "jo@example.com",
		Subtotal:        2000,
		Total:           2495,
		Currency:        "eur",
		Status:          model.OrderStatusPaid,
		StripeSessionID: sessionID,
		PaymentIntentID: "pi_" + sessionID,
		ShippingAddress: model.Address{Name: "Jo", Street1: "Hauptstr. 1", City: "Berlin", Zip: "10115", Country: "DE"},
		ShippingMethod:  model.ShippingMethod{Carrier: "Standard", Price: 495},
	}
}

func TestOrderRepository_CreateWithLines(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newOrder("ORD1", "user_1", "cs_1")
	lines := []model.OrderLine{
		{ProductID: 42, Title: "Wallbox", Quantity: 2, UnitPrice: 1000},
	}
	require.NoError(t, repo.CreateWithLines(ctx, order, lines))
	assert.NotZero(t, order.ID)

	got, err := repo.FindBySessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "ORD1", got.OrderNumber)
	assert.Equal(t, "Berlin", got.ShippingAddress.City)
	assert.Equal(t, model.Money(495), got.ShippingMethod.Price)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, model.Money(1000), got.Lines[0].UnitPrice)
	assert.Equal(t, order.ID, got.Lines[0].OrderID)

	byIntent, err := repo.FindByPaymentIntentID(ctx, "pi_cs_1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byIntent.ID)
}

func TestOrderRepository_DuplicateSession(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithLines(ctx, newOrder("ORD1", "user_1", "cs_dup"),
		[]model.OrderLine{{ProductID: 1, Title: "A", Quantity: 1, UnitPrice: 100}}))

	err := repo.CreateWithLines(ctx, newOrder("ORD2", "user_1", "cs_dup"),
		[]model.OrderLine{{ProductID: 2, Title: "B", Quantity: 1, UnitPrice: 100}})
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	// the rejected order left no lines behind
	var lineCount int64
	require.NoError(t, db.Model(&model.OrderLine{}).Count(&lineCount).Error)
	assert.Equal(t, int64(1), lineCount)
}

func TestOrderRepository_LineFailureRollsBackOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	// two lines with the same primary key make the second insert fail
	err := repo.CreateWithLines(context.Background(), newOrder("ORD1", "user_1", "cs_1"), []model.OrderLine{
		{ID: 7, ProductID: 1, Title: "A", Quantity: 1, UnitPrice: 100},
		{ID: 7, ProductID: 2, Title: "B", Quantity: 1, UnitPrice: 100},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateOrder)

	var orderCount int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestOrderRepository_ListAndStatus(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	older := newOrder("ORD1", "user_1", "cs_1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.CreateWithLines(ctx, older, nil))
	require.NoError(t, repo.CreateWithLines(ctx, newOrder("ORD2", "user_1", "cs_2"), nil))
	require.NoError(t, repo.CreateWithLines(ctx, newOrder("ORD3", "user_2", "cs_3"), nil))

	orders, err := repo.ListByUserID(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD2", orders[0].OrderNumber)

	changed, err := repo.UpdateStatus(ctx, older.ID, model.StatusesAllowing(model.OrderStatusRefunded), model.OrderStatusRefunded)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.UpdateStatus(ctx, older.ID, model.StatusesAllowing(model.OrderStatusRefunded), model.OrderStatusRefunded)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.FindBySessionID(ctx, "cs_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

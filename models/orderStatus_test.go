package models_test

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/shop_backend/models"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendOrderStatus_Sequence(t *testing.T) {
	ctx := setupTestDB(t)
	order, err := models.CreateOrder(ctx, newTestOrder())
	require.NoError(t, err)

	comment := "  packed  "
	accepted, err := models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: "A", Comment: &comment})
	require.NoError(t, err)
	require.NotNil(t, accepted.Comment)
	assert.Equal(t, "packed", *accepted.Comment)

	sent, err := models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: "sent"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusSent, sent.Status)

	recent, err := models.GetRecentOrderStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, sent.ID, recent.ID)

	statuses, err := models.ListOrderStatuses(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, []models.OrderStatusType{models.OrderStatusSent, models.OrderStatusAccepted, models.OrderStatusCreated},
		[]models.OrderStatusType{statuses[0].Status, statuses[1].Status, statuses[2].Status})

	byId, err := models.GetOrderStatus(ctx, accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, byId.Status)
}

func TestAppendOrderStatus_Duplicate(t *testing.T) {
	ctx := setupTestDB(t)
	order, err := models.CreateOrder(ctx, newTestOrder())
	require.NoError(t, err)

	_, err = models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: "C"})
	var duplicate *utils.DuplicateStatusError
	require.True(t, errors.As(err, &duplicate), "got %v", err)
	assert.Equal(t, "Order already has status Created", err.Error())

	_, err = models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: "A"})
	require.NoError(t, err)
	_, err = models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: "A"})
	require.True(t, errors.As(err, &duplicate))
}

func TestAppendOrderStatus_TerminalRegardlessOfStatus(t *testing.T) {
	for _, terminal := range []models.OrderStatusType{models.OrderStatusClosed, models.OrderStatusCancelled} {
		t.Run(terminal.Name(), func(t *testing.T) {
			ctx := setupTestDB(t)
			order, err := models.CreateOrder(ctx, newTestOrder())
			require.NoError(t, err)
			_, err = models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: string(terminal)})
			require.NoError(t, err)

			for _, next := range []string{"A", "D", string(terminal), "bogus"} {
				_, err = models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: next})
				var terminalErr *utils.TerminalStateError
				require.True(t, errors.As(err, &terminalErr), "status %s: got %v", next, err)
				assert.Equal(t, terminal.Name()+" order can not obtain a new status", err.Error())
			}
		})
	}
}

func TestAppendOrderStatus_InvalidAndMissing(t *testing.T) {
	ctx := setupTestDB(t)
	order, err := models.CreateOrder(ctx, newTestOrder())
	require.NoError(t, err)

	_, err = models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{Status: "Q"})
	assert.True(t, utils.IsValidationError(err))
	_, err = models.AppendOrderStatus(ctx, order.ID, &models.NewOrderStatus{})
	assert.True(t, utils.IsValidationError(err))

	_, err = models.AppendOrderStatus(ctx, 999, &models.NewOrderStatus{Status: "A"})
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
	_, err = models.ListOrderStatuses(ctx, 999)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

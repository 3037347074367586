package crowdfund

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewaySend(t *testing.T) {
	var got transferCall
	gw := NewTransferGateway(func(ctx context.Context, to string, amount int64) error {
		got = transferCall{To: to, Amount: amount}
		return nil
	})

	require.NoError(t, gw.Send(context.Background(), recipientAddr, 42))
	assert.Equal(t, transferCall{To: recipientAddr, Amount: 42}, got)
	assert.False(t, gw.InFlight())
}

func TestGatewaySendSurfacesFailure(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	gw := NewTransferGateway(func(ctx context.Context, to string, amount int64) error {
		return cause
	})

	err := gw.Send(context.Background(), recipientAddr, 42)
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.True(t, errors.Is(err, cause))

	// The guard is released after a failure.
	assert.False(t, gw.InFlight())
}

func TestGatewayRejectsNestedSend(t *testing.T) {
	var gw *TransferGateway
	var nestedErr error

	gw = NewTransferGateway(func(ctx context.Context, to string, amount int64) error {
		nestedErr = gw.Send(ctx, to, amount)
		return nil
	})

	require.NoError(t, gw.Send(context.Background(), recipientAddr, 42))
	assert.ErrorIs(t, nestedErr, ErrReentrancyDetected)
}

func TestGatewayInFlightDuringTransfer(t *testing.T) {
	var gw *TransferGateway
	var inFlight bool

	gw = NewTransferGateway(func(ctx context.Context, to string, amount int64) error {
		inFlight = gw.InFlight()
		return nil
	})

	require.NoError(t, gw.Send(context.Background(), recipientAddr, 1))
	assert.True(t, inFlight)
	assert.False(t, gw.InFlight())
}

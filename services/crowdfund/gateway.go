package crowdfund

import (
	"context"
	"sync/atomic"
)

// TransferFunc is the atomic external value-transfer primitive. It either
// moves the full amount to the destination or returns an error; partial
// transfers do not exist at this boundary. The callee may synchronously call
// back into the service before returning.
type TransferFunc func(ctx context.Context, to string, amount int64) error

// TransferGateway wraps the transfer primitive with single-entry discipline.
// While a transfer is in flight, any nested guarded call fails fast with
// ErrReentrancyDetected instead of executing.
type TransferGateway struct {
	transfer TransferFunc
	inFlight atomic.Bool
}

// NewTransferGateway creates a gateway around the given primitive.
func NewTransferGateway(transfer TransferFunc) *TransferGateway {
	return &TransferGateway{transfer: transfer}
}

// InFlight reports whether a transfer initiated by this gateway has not yet
// returned.
func (g *TransferGateway) InFlight() bool {
	return g.inFlight.Load()
}

// Send performs exactly one outbound transfer. A transfer failure is surfaced
// as ErrTransferFailed wrapping the cause, never swallowed.
func (g *TransferGateway) Send(ctx context.Context, to string, amount int64) error {
	if !g.inFlight.CompareAndSwap(false, true) {
		return ErrReentrancyDetected
	}
	defer g.inFlight.Store(false)

	if err := g.transfer(ctx, to, amount); err != nil {
		return transferFailed(err)
	}
	return nil
}

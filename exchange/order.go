package exchange

import (
	"context"
	"fmt"

	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/identity"
	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/stark"
	"github.com/sirupsen/logrus"
)

// CreateOrderNonce asks the exchange to prepare an order. The returned
// hash must be signed and submitted with CreateNewOrder.
func (e *Exchange) CreateOrderNonce(ctx context.Context, req orderNonceRequest) (OrderNonce, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return OrderNonce{}, err
	}
	if err := checkAmount(req.Volume.Raw()); err != nil {
		return OrderNonce{}, err
	}

	return rest.PostPayload[OrderNonce](ctx, e.rest, constants.PathOrderNonce, req)
}

// CreateNewOrder submits a signed order nonce
func (e *Exchange) CreateNewOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Order{}, err
	}
	return rest.PostPayload[Order](ctx, e.rest, constants.PathOrderCreate, req)
}

// PlaceOrder requests an order nonce, signs it with kp and submits the
// order. A failure after the nonce was issued is not retried: the nonce
// is single use.
func (e *Exchange) PlaceOrder(
	ctx context.Context,
	kp stark.KeyPair,
	req orderNonceRequest,
) (Order, error) {
	const flow = "order"

	nonce, err := e.CreateOrderNonce(ctx, req)
	if err != nil {
		return Order{}, err
	}
	e.step(flow, "NONCE_REQUESTED", logrus.Fields{"market": req.Market, "nonce": nonce.Nonce})

	signed, err := SignOrderNonce(kp, nonce)
	if err != nil {
		return Order{}, err
	}
	e.step(flow, "SIGNED", nil)

	order, err := e.CreateNewOrder(ctx, signed)
	if err != nil {
		return Order{}, fmt.Errorf("failed to submit order: %w", err)
	}
	e.step(flow, "SUBMITTED", logrus.Fields{"order_id": order.ID})

	return order, nil
}

// CreateCompleteOrder derives the STARK key pair of id for the
// configured environment and places the order with it
func (e *Exchange) CreateCompleteOrder(
	ctx context.Context,
	id identity.Identity,
	req orderNonceRequest,
) (Order, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Order{}, err
	}

	kp, err := stark.DeriveKeyPair(id, e.env)
	if err != nil {
		return Order{}, err
	}

	return e.PlaceOrder(ctx, kp, req)
}

func (e *Exchange) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Order{}, err
	}
	return rest.GetPayload[Order](ctx, e.rest, fmt.Sprintf(constants.PathOrder, orderID), nil)
}

func (e *Exchange) ListOrders(ctx context.Context, params ListOrdersParams) ([]Order, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return nil, err
	}
	return rest.GetPayload[[]Order](ctx, e.rest, constants.PathOrders, params.query())
}

func (e *Exchange) CancelOrder(ctx context.Context, orderID int64) (CancelledOrder, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return CancelledOrder{}, err
	}
	return rest.PostPayload[CancelledOrder](
		ctx,
		e.rest,
		constants.PathOrderCancel,
		cancelOrderRequest{OrderID: orderID},
	)
}

// BulkCancel cancels the open orders of a market
func (e *Exchange) BulkCancel(ctx context.Context, req BulkCancelRequest) (Receipt, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Receipt{}, err
	}

	var result Receipt
	if err := e.rest.Post(ctx, constants.PathBulkCancel, req, &result); err != nil {
		return Receipt{}, err
	}
	return result, nil
}

func (e *Exchange) ListTrades(ctx context.Context, params TradesParams) ([]Trade, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return nil, err
	}
	return rest.GetPayload[[]Trade](ctx, e.rest, constants.PathTrades, params.query())
}

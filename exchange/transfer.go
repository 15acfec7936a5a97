package exchange

import (
	"context"
	"fmt"
	"net/url"

	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/stark"
	"github.com/banky/go-tanx/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// InitiateInternalTransfer asks the exchange for the hash authorizing a
// transfer
func (e *Exchange) InitiateInternalTransfer(
	ctx context.Context,
	req InternalTransferRequest,
) (InternalTransferStart, error) {
	return rest.PostPayload[InternalTransferStart](
		ctx,
		e.rest,
		constants.PathInternalTransferInitiate,
		req,
	)
}

// ExecuteInternalTransfer submits the signed transfer hash
func (e *Exchange) ExecuteInternalTransfer(
	ctx context.Context,
	req InternalTransferProcessRequest,
) (InternalTransfer, error) {
	return rest.PostPayload[InternalTransfer](
		ctx,
		e.rest,
		constants.PathInternalTransferProcess,
		req,
	)
}

// InternalTransfer moves amount currency to the exchange account of
// destination. The same credentials authorize both steps.
func (e *Exchange) InternalTransfer(
	ctx context.Context,
	kp stark.KeyPair,
	creds Credentials,
	currency string,
	amount decimal.Decimal,
	destination string,
	opts ...InternalTransferOption,
) (InternalTransfer, error) {
	const flow = "internal_transfer"

	if err := checkAmount(amount); err != nil {
		return InternalTransfer{}, err
	}
	if err := e.rest.RequireAuth(); err != nil {
		return InternalTransfer{}, err
	}

	var cfg internalTransferConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	clientReferenceID, ok := cfg.clientReferenceID.Get()
	if !ok {
		clientReferenceID = uuid.NewString()
	}

	start, err := e.InitiateInternalTransfer(ctx, InternalTransferRequest{
		Credentials:        creds,
		Currency:           currency,
		Amount:             types.FloatString(amount),
		DestinationAddress: destination,
		ClientReferenceID:  clientReferenceID,
	})
	if err != nil {
		return InternalTransfer{}, err
	}
	e.step(flow, "INITIATED", logrus.Fields{
		"currency":            currency,
		"client_reference_id": clientReferenceID,
		"nonce":               start.Nonce,
	})

	req, err := signInternalTransfer(kp, creds, start)
	if err != nil {
		return InternalTransfer{}, err
	}
	e.step(flow, "SIGNED", nil)

	transfer, err := e.ExecuteInternalTransfer(ctx, req)
	if err != nil {
		return InternalTransfer{}, fmt.Errorf("failed to execute internal transfer: %w", err)
	}
	e.step(flow, "EXECUTED", nil)

	return transfer, nil
}

func (e *Exchange) ListInternalTransfers(
	ctx context.Context,
	params ListInternalTransfersParams,
) (InternalTransferList, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return InternalTransferList{}, err
	}
	return rest.GetPayload[InternalTransferList](
		ctx,
		e.rest,
		constants.PathInternalTransfers,
		params.query(),
	)
}

// InternalTransferByClientID looks a transfer up by its client reference
// id
func (e *Exchange) InternalTransferByClientID(
	ctx context.Context,
	clientReferenceID string,
) (InternalTransfer, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return InternalTransfer{}, err
	}
	return rest.GetPayload[InternalTransfer](
		ctx,
		e.rest,
		fmt.Sprintf(constants.PathInternalTransfer, url.PathEscape(clientReferenceID)),
		nil,
	)
}

// CheckInternalTransferUserExists reports whether destination has an
// exchange account that can receive transfers
func (e *Exchange) CheckInternalTransferUserExists(
	ctx context.Context,
	creds Credentials,
	destination string,
) (UserExists, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return UserExists{}, err
	}
	return rest.PostPayload[UserExists](
		ctx,
		e.rest,
		constants.PathInternalTransferUserCheck,
		checkUserExistsRequest{Credentials: creds, DestinationAddress: destination},
	)
}

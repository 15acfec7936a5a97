package exchange

import (
	"fmt"

	"github.com/banky/go-tanx/internal/utils"
	"github.com/banky/go-tanx/stark"
)

// SignOrderNonce signs an order nonce and returns the body that submits
// the order. The message hash is echoed back exactly as issued.
func SignOrderNonce(kp stark.KeyPair, nonce OrderNonce) (CreateOrderRequest, error) {
	sig, err := stark.SignMessageHash(kp, nonce.MsgHash)
	if err != nil {
		return CreateOrderRequest{}, fmt.Errorf("failed to sign order nonce: %w", err)
	}

	return CreateOrderRequest{
		MsgHash:   nonce.MsgHash,
		Signature: sig,
		Nonce:     nonce.Nonce,
	}, nil
}

// signNormalWithdrawal signs a normal withdrawal. The validate endpoint
// takes the hash as bare hex without leading zeros, whatever encoding the
// initiate endpoint used.
func signNormalWithdrawal(kp stark.KeyPair, start WithdrawalStart) (ValidateWithdrawalRequest, error) {
	sig, err := stark.SignWithdrawalHash(kp, start.MsgHash)
	if err != nil {
		return ValidateWithdrawalRequest{}, fmt.Errorf("failed to sign withdrawal: %w", err)
	}

	msgHash, err := stark.MessageHashHex(start.MsgHash, stark.DecimalHash)
	if err != nil {
		return ValidateWithdrawalRequest{}, err
	}

	return ValidateWithdrawalRequest{
		MsgHash:   utils.RemoveHexPrefix(msgHash, true),
		Signature: sig,
		Nonce:     start.Nonce,
	}, nil
}

func signFastWithdrawal(kp stark.KeyPair, start FastWithdrawalStart) (ProcessFastWithdrawalRequest, error) {
	sig, err := stark.SignWithdrawalHash(kp, start.MsgHash)
	if err != nil {
		return ProcessFastWithdrawalRequest{}, fmt.Errorf("failed to sign fast withdrawal: %w", err)
	}

	return ProcessFastWithdrawalRequest{
		MsgHash:          start.MsgHash,
		Signature:        sig,
		FastWithdrawalID: start.FastWithdrawalID,
	}, nil
}

func signInternalTransfer(
	kp stark.KeyPair,
	creds Credentials,
	start InternalTransferStart,
) (InternalTransferProcessRequest, error) {
	sig, err := stark.SignInternalTransferHash(kp, start.MsgHash)
	if err != nil {
		return InternalTransferProcessRequest{}, fmt.Errorf("failed to sign internal transfer: %w", err)
	}

	return InternalTransferProcessRequest{
		Credentials: creds,
		Signature:   sig,
		Nonce:       start.Nonce,
		MsgHash:     start.MsgHash,
	}, nil
}

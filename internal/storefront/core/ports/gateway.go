// Package ports declares the interfaces the storefront core depends on.
// Adapters under internal/storefront/infra provide the implementations.
package ports

import (
	"context"

	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
)

// PaymentGateway mediates all calls to the external payment service.
//
// The upstream service's route shapes are not guaranteed, so implementations
// try a configured ordered list of endpoint variants per logical operation,
// stopping at the first that answers; see the webpay adapter.
type PaymentGateway interface {
	// CreateTransaction validates the request locally (amount > 0, buy
	// order and session id present) and only then issues the call. The
	// response is normalized into a TransactionHandle regardless of which
	// field-naming variant the upstream used.
	CreateTransaction(ctx context.Context, req entity.TransactionRequest) (*entity.TransactionHandle, error)

	// ConfirmTransaction finalizes the transaction identified by the token
	// recovered from the return URL.
	ConfirmTransaction(ctx context.Context, token string) (*entity.ConfirmationResult, error)

	// TransactionStatus is a read-only probe of the transaction state.
	TransactionStatus(ctx context.Context, token string) (*entity.ConfirmationResult, error)
}

package ports

import (
	"context"

	"github.com/avatarctic/docflow/internal/core/domain/billing"
)

// BillingClient reads customer accounts from the billing platform.
type BillingClient interface {
	// FetchClients returns all clients matching filter; a nil filter returns everyone.
	FetchClients(ctx context.Context, filter *billing.ClientFilter) ([]billing.Client, error)
}

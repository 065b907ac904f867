package interfaces

import (
	"context"

	"godeliver/internal/models"
)

type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)

	// ListActiveWithMinWallet returns every active driver document with
	// role="driver" and wallet_amount >= minWallet. Zone, token, rejection
	// and distance filtering happen in the locator on top of this set.
	ListActiveWithMinWallet(ctx context.Context, minWallet float64) ([]*models.Driver, error)

	// ListActive returns every active driver with role="driver".
	ListActive(ctx context.Context) ([]*models.Driver, error)

	// AddOrderRequest appends the order ID to each listed driver's
	// pending-offer inbox in one batched write ($addToSet).
	AddOrderRequest(ctx context.Context, driverIDs []string, orderID string) error

	// RemoveOrderRequest pulls the order ID from one driver's inbox.
	RemoveOrderRequest(ctx context.Context, driverID, orderID string) error

	// PurgeOrderRequests pulls the order ID from every driver's inbox except
	// the winner's, in one batched write. Returns the number of drivers
	// touched; zero on a repeat call.
	PurgeOrderRequests(ctx context.Context, orderID, exceptDriverID string) (int64, error)
}

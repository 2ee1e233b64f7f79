package checkout

import (
	"context"
	"fmt"

	"github.com/khonloi/gash-storefront/internal/api"
	"github.com/khonloi/gash-storefront/internal/domain"
)

// Remote implements API over the REST client.
type Remote struct {
	client *api.Client
}

func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	var order domain.Order
	err := r.client.Post(ctx, "/orders", req, &order)
	return order, err
}

func (r *Remote) RemoveCartItems(ctx context.Context, itemIDs []string) error {
	for _, id := range itemIDs {
		if err := r.client.Delete(ctx, fmt.Sprintf("/carts/%s", id)); err != nil && !api.IsNotFound(err) {
			return err
		}
	}
	return nil
}

package cart

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

func (r *Remote) FetchCart(ctx context.Context) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := r.client.Get(ctx, "/carts", &items); err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (r *Remote) AddItem(ctx context.Context, productID, variantID string, quantity int) error {
	body := map[string]any{
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	}
	return r.client.Post(ctx, "/carts", body, nil)
}

func (r *Remote) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	body := map[string]any{"quantity": quantity}
	return r.client.Put(ctx, fmt.Sprintf("/carts/%s", itemID), body, nil)
}

func (r *Remote) RemoveItem(ctx context.Context, itemID string) error {
	return r.client.Delete(ctx, fmt.Sprintf("/carts/%s", itemID))
}

package catalog

import (
	"context"
	"fmt"

	"github.com/khonloi/gash-storefront/internal/api"
	"github.com/khonloi/gash-storefront/internal/domain"
)

// Remote implements API and FavoritesAPI over the REST client.
type Remote struct {
	client *api.Client
}

func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) FetchProducts(ctx context.Context, f Filters) ([]domain.Product, error) {
	q := api.Query(map[string]string{
		"category_id": f.CategoryID,
		"min_price":   f.MinPrice,
		"max_price":   f.MaxPrice,
		"sort":        f.Sort,
	})
	var list []domain.Product
	if err := r.client.Get(ctx, "/products"+q, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Remote) Search(ctx context.Context, query string) ([]domain.Product, error) {
	var list []domain.Product
	if err := r.client.Get(ctx, "/search"+api.Query(map[string]string{"q": query}), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Remote) FetchVariant(ctx context.Context, variantID string) (domain.Variant, error) {
	var v domain.Variant
	err := r.client.Get(ctx, fmt.Sprintf("/variants/%s", variantID), &v)
	return v, err
}

func (r *Remote) FetchFavorites(ctx context.Context) ([]domain.Favorite, error) {
	var list []domain.Favorite
	if err := r.client.Get(ctx, "/favorites", &list); err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (r *Remote) AddFavorite(ctx context.Context, productID string) error {
	return r.client.Post(ctx, "/favorites", map[string]string{"product_id": productID}, nil)
}

func (r *Remote) RemoveFavorite(ctx context.Context, productID string) error {
	return r.client.Delete(ctx, fmt.Sprintf("/favorites/%s", productID))
}

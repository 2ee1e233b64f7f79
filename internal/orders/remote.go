package orders

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

func (r *Remote) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	var list []domain.Order
	if err := r.client.Get(ctx, "/orders", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Remote) FetchOrderDetail(ctx context.Context, orderID string) (domain.Order, error) {
	var order domain.Order
	err := r.client.Get(ctx, fmt.Sprintf("/order-details/%s", orderID), &order)
	return order, err
}

func (r *Remote) CancelOrder(ctx context.Context, orderID string) error {
	return r.client.Put(ctx, fmt.Sprintf("/orders/%s/cancel", orderID), nil, nil)
}

func (r *Remote) SubmitFeedback(ctx context.Context, orderID, feedback string) error {
	body := map[string]string{"feedback": feedback}
	return r.client.Post(ctx, fmt.Sprintf("/orders/%s/feedback", orderID), body, nil)
}

// FetchFeedback treats 404 as "no feedback yet", not an error.
func (r *Remote) FetchFeedback(ctx context.Context, orderID string) (string, error) {
	var payload struct {
		Feedback string `json:"feedback"`
	}
	err := r.client.Get(ctx, fmt.Sprintf("/orders/%s/feedback", orderID), &payload)
	if api.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return payload.Feedback, nil
}

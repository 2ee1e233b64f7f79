package notify

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

func (r *Remote) FetchNotifications(ctx context.Context) ([]domain.Notification, error) {
	var list []domain.Notification
	if err := r.client.Get(ctx, "/notifications", &list); err != nil {
		if api.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (r *Remote) MarkRead(ctx context.Context, id string) error {
	return r.client.Put(ctx, fmt.Sprintf("/notifications/%s/read", id), nil, nil)
}

func (r *Remote) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, fmt.Sprintf("/notifications/%s", id))
}

package voucher

import (
	"context"
	"net/url"

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

func (r *Remote) Validate(ctx context.Context, code string) (domain.Voucher, error) {
	var v domain.Voucher
	err := r.client.Get(ctx, "/vouchers/"+url.PathEscape(code), &v)
	return v, err
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/khonloi/gash-storefront/internal/api"
)

// ErrBadRedirectURL marks a gateway URL response that is not a usable
// absolute http(s) URL. The order stays created and unpaid.
var ErrBadRedirectURL = errors.New("gateway returned a non-conforming redirect url")

// Client drives the redirect-based payment gateway flow: request a payment
// URL for a created order, and forward the gateway's return parameters to
// the backend for verification.
type Client struct {
	api *api.Client
}

func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// RequestURL asks the backend for the gateway redirect URL for orderID.
func (c *Client) RequestURL(ctx context.Context, orderID string) (string, error) {
	var payload struct {
		URL string `json:"url"`
	}
	if err := c.api.Get(ctx, "/payment/url"+api.Query(map[string]string{"order_id": orderID}), &payload); err != nil {
		return "", fmt.Errorf("request payment url: %w", err)
	}

	parsed, err := url.Parse(payload.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrBadRedirectURL, payload.URL)
	}
	return payload.URL, nil
}

// Result is the backend's verdict on a gateway return.
type Result struct {
	Paid    bool   `json:"paid"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

// VerifyReturn forwards the gateway's return query parameters verbatim; the
// backend owns signature validation and the payment-status update.
func (c *Client) VerifyReturn(ctx context.Context, params url.Values) (Result, error) {
	var result Result
	path := "/payment/verify"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := c.api.Get(ctx, path, &result); err != nil {
		return Result{}, fmt.Errorf("verify payment return: %w", err)
	}
	return result, nil
}

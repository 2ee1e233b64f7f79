package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Client sends transactional email through a template-based delivery
// service. Everything here is best-effort: failures are logged at Warn and
// never propagate, so email cannot block a checkout or login.
type Client struct {
	endpoint      string
	serviceID     string
	otpTemplate   string
	orderTemplate string
	http          *http.Client
}

func NewClient(endpoint, serviceID, otpTemplate, orderTemplate string) *Client {
	return &Client{
		endpoint:      endpoint,
		serviceID:     serviceID,
		otpTemplate:   otpTemplate,
		orderTemplate: orderTemplate,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

// SendOTP mails a one-time code.
func (c *Client) SendOTP(ctx context.Context, email, code string) {
	c.send(ctx, c.otpTemplate, map[string]string{
		"to_email": email,
		"otp":      code,
	})
}

// SendOrderStatus mails an order-status update.
func (c *Client) SendOrderStatus(ctx context.Context, email, orderID, status string) {
	c.send(ctx, c.orderTemplate, map[string]string{
		"to_email": email,
		"order_id": orderID,
		"status":   status,
	})
}

func (c *Client) send(ctx context.Context, templateID string, params map[string]string) {
	if c.serviceID == "" || templateID == "" {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"service_id":      c.serviceID,
		"template_id":     templateID,
		"template_params": params,
	})
	if err != nil {
		slog.Warn("mail payload marshal failed", "template", templateID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		slog.Warn("mail request build failed", "template", templateID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("mail send failed", "template", templateID, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("mail service rejected send", "template", templateID, "status", resp.StatusCode)
	}
}

package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khonloi/gash-storefront/internal/api"
)

type noTokens struct{}

func (noTokens) Token() (string, error) { return "tok", nil }

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(api.NewClient(srv.URL, time.Second, noTokens{}))
}

func TestRequestURL(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/payment/url", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "ord-1", req.URL.Query().Get("order_id"))
		w.Write([]byte(`{"data":{"url":"https://pay.example.com/r/abc"}}`))
	})

	got, err := newTestClient(t, r).RequestURL(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/r/abc", got)
}

func TestRequestURL_NonConformingURLRejected(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"relative", "/pay/abc"},
		{"wrong scheme", "ftp://pay.example.com/abc"},
		{"no host", "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/payment/url", func(w http.ResponseWriter, req *http.Request) {
				w.Write([]byte(`{"data":{"url":"` + tt.url + `"}}`))
			})

			_, err := newTestClient(t, r).RequestURL(context.Background(), "ord-1")
			assert.ErrorIs(t, err, ErrBadRedirectURL)
		})
	}
}

func TestVerifyReturn_ForwardsParamsVerbatim(t *testing.T) {
	var gotQuery url.Values
	r := chi.NewRouter()
	r.Get("/payment/verify", func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query()
		w.Write([]byte(`{"data":{"paid":true,"order_id":"ord-1","message":"ok"}}`))
	})

	params := url.Values{}
	params.Set("vnp_TxnRef", "ord-1")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_SecureHash", "deadbeef")

	res, err := newTestClient(t, r).VerifyReturn(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.Paid)
	assert.Equal(t, "ord-1", res.OrderID)

	// The signature fields reach the backend untouched.
	assert.Equal(t, "ord-1", gotQuery.Get("vnp_TxnRef"))
	assert.Equal(t, "00", gotQuery.Get("vnp_ResponseCode"))
	assert.Equal(t, "deadbeef", gotQuery.Get("vnp_SecureHash"))
}

func TestVerifyReturn_FailedPayment(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/payment/verify", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"data":{"paid":false,"order_id":"ord-1","message":"transaction declined"}}`))
	})

	res, err := newTestClient(t, r).VerifyReturn(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.False(t, res.Paid)
	assert.Equal(t, "transaction declined", res.Message)
}

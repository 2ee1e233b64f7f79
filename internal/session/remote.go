package session

import (
	"context"

	"github.com/khonloi/gash-storefront/internal/api"
	"github.com/khonloi/gash-storefront/internal/domain"
)

// Remote talks to the accounts resource.
type Remote struct {
	client *api.Client
}

func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

type loginResponse struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

// Authenticate exchanges credentials for a bearer token and profile.
func (r *Remote) Authenticate(ctx context.Context, email, password string) (string, domain.Profile, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := r.client.Post(ctx, "/accounts/login", body, &resp); err != nil {
		return "", domain.Profile{}, err
	}
	return resp.Token, resp.User, nil
}

// UpdateProfile saves profile edits and returns the authoritative copy.
func (r *Remote) UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	var updated domain.Profile
	err := r.client.Put(ctx, "/accounts/profile", p, &updated)
	return updated, err
}

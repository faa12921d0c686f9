package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperr "github.com/cookshelf/backend/internal/errors"
)

// UsernameResolver looks up a display name for a numeric user id. The real
// implementation calls a separate user service; failures are recovered by the
// caller, never propagated to the request.
type UsernameResolver interface {
	Resolve(ctx context.Context, userID uint) (string, error)
}

// HTTPUsernameResolver resolves usernames against a remote user service.
type HTTPUsernameResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPUsernameResolver(baseURL string, timeout time.Duration) *HTTPUsernameResolver {
	return &HTTPUsernameResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPUsernameResolver) Resolve(ctx context.Context, userID uint) (string, error) {
	url := fmt.Sprintf("%s/users/%d", r.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeUnavailable, "failed to build username request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeUnavailable, "username service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.Newf(apperr.CodeUnavailable, "username service returned status %d", resp.StatusCode)
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperr.Wrap(err, apperr.CodeUnavailable, "failed to decode username response")
	}
	return body.Username, nil
}

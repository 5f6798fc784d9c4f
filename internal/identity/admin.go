package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// defaultAdminTimeout bounds the external admin lookup. A slow auxiliary
// service must not stall the pipeline.
const defaultAdminTimeout = 5 * time.Second

// AdminResolver answers "is this email an admin" against an external
// service. Any timeout or transport error resolves to non-admin, favoring
// quota enforcement over availability.
type AdminResolver struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewAdminResolver creates a resolver against the given base URL. An
// empty base URL disables admin resolution entirely. A zero timeout uses
// the 5-second default.
func NewAdminResolver(baseURL string, timeout time.Duration) *AdminResolver {
	if timeout <= 0 {
		timeout = defaultAdminTimeout
	}
	return &AdminResolver{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type adminCheckResponse struct {
	Admin bool `json:"admin"`
}

// IsAdmin resolves the admin flag for an email. Fails closed: any error,
// non-200 status, or timeout returns false.
func (r *AdminResolver) IsAdmin(ctx context.Context, email string) bool {
	if r.baseURL == "" || email == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	checkURL := fmt.Sprintf("%s/admins/check?email=%s", r.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		slog.Warn("admin check request build failed", "error", err)
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		slog.Warn("admin check failed, defaulting to non-admin", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("admin check returned non-OK status", "status", resp.StatusCode)
		return false
	}

	var result adminCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Warn("admin check response unreadable", "error", err)
		return false
	}
	return result.Admin
}

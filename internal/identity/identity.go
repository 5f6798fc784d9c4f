// Package identity provides anonymous per-device identity primitives and
// the external admin-resolution boundary.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/reasonforge/reasonforge/internal/domain"
	"github.com/reasonforge/reasonforge/internal/store"
	"github.com/reasonforge/reasonforge/internal/tier"
)

const (
	AnonCookieName   = "reasonforge_anon_id"
	EmailHeaderName  = "X-Account-Email"
	anonCookieMaxAge = 30 * 24 * time.Hour
)

type contextKey int

const (
	accountKey contextKey = iota
)

var (
	anonIDPattern = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// AccountFromContext extracts the resolved account from the request
// context. Returns nil outside the identity middleware.
func AccountFromContext(ctx context.Context) *domain.Account {
	if a, ok := ctx.Value(accountKey).(*domain.Account); ok {
		return a
	}
	return nil
}

func generateAnonID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

func isValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

func sanitizeEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return ""
	}
	return email
}

func ensureAccount(ctx context.Context, repo store.Repository, tiers *tier.Catalog, accountID, email string) (*domain.Account, error) {
	acct, err := repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct != nil {
		if email != "" && email != acct.Email {
			if err := repo.UpdateAccountEmail(ctx, accountID, email); err != nil {
				return nil, err
			}
			acct.Email = email
		}
		return acct, nil
	}

	def := tiers.Default()
	now := time.Now()
	acct = &domain.Account{
		ID:                accountID,
		Email:             email,
		Tier:              domain.Tier(def.ID),
		BasicRemaining:    def.MaxBasic,
		AdvancedRemaining: def.MaxAdvanced,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := repo.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func getOrCreateAnonID(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if c, err := r.Cookie(AnonCookieName); err == nil && isValidAnonID(c.Value) {
		setAnonCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateAnonID()
	if err != nil {
		return "", err
	}
	setAnonCookie(w, id, isDev)
	return id, nil
}

func setAnonCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(anonCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware injects anonymous per-device identity, ensures an account
// row exists, and resolves the admin flag through the external boundary.
func Middleware(repo store.Repository, tiers *tier.Catalog, admins *AdminResolver, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, err := getOrCreateAnonID(w, r, isDev)
			if err != nil {
				http.Error(w, `{"error":"failed to establish anonymous identity"}`, http.StatusInternalServerError)
				return
			}

			email := sanitizeEmail(r.Header.Get(EmailHeaderName))
			acct, err := ensureAccount(r.Context(), repo, tiers, accountID, email)
			if err != nil {
				http.Error(w, `{"error":"failed to initialize account"}`, http.StatusInternalServerError)
				return
			}

			if acct.Email != "" {
				acct.IsAdmin = admins.IsAdmin(r.Context(), acct.Email)
			}

			ctx := context.WithValue(r.Context(), accountKey, acct)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

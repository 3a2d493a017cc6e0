package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/sessions"

	"brawlpit/database"
)

type ContextKey string

const AccountContextKey ContextKey = "account"

const sessionName = "brawlpit-session"

type AuthMiddleware struct {
	repo  *database.Repository
	store *sessions.CookieStore
}

func NewAuthMiddleware(repo *database.Repository, sessionSecret string) *AuthMiddleware {
	store := sessions.NewCookieStore([]byte(sessionSecret))

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   90 * 24 * 60 * 60, // 90 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}

	return &AuthMiddleware{
		repo:  repo,
		store: store,
	}
}

// LoadAccount checks for a session token and loads the account into the
// request context. Requests without a valid session pass through
// anonymous.
func (am *AuthMiddleware) LoadAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := am.store.Get(r, sessionName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := session.Values["token"].(string)
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		account, err := am.repo.GetAccountBySessionToken(token)
		if err != nil {
			// Invalid or expired token, clean up session
			delete(session.Values, "token")
			session.Save(r, w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if AccountFromContext(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSession mints a session token for an account.
func (am *AuthMiddleware) CreateSession(w http.ResponseWriter, r *http.Request, accountID int) error {
	token, err := generateSessionToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	if err := am.repo.CreateSession(token, accountID, expiresAt); err != nil {
		return err
	}

	session, err := am.store.Get(r, sessionName)
	if err != nil {
		return err
	}

	session.Values["token"] = token
	return session.Save(r, w)
}

// DestroySession logs an account out.
func (am *AuthMiddleware) DestroySession(w http.ResponseWriter, r *http.Request) error {
	session, err := am.store.Get(r, sessionName)
	if err != nil {
		return err
	}

	if token, ok := session.Values["token"].(string); ok && token != "" {
		am.repo.DeleteSession(token)
	}

	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// AccountFromContext extracts the logged-in account, or nil.
func AccountFromContext(ctx context.Context) *database.Account {
	account, ok := ctx.Value(AccountContextKey).(*database.Account)
	if !ok {
		return nil
	}
	return account
}

func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
	"github.com/cinevault/cinevault/internal/config"
	"github.com/cinevault/cinevault/internal/ratelimit"
)

// fakeUserRepo is an in-memory UserRepository for end-to-end route tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperror.NewNotFound("user not found")
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

func (r *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperror.NewNotFound("user not found")
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string) error { return nil }

func (r *fakeUserRepo) AddFavorite(ctx context.Context, userID, movieID string) error { return nil }

func (r *fakeUserRepo) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	return nil
}

func (r *fakeUserRepo) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

// newTestServer wires the auth routes onto a test Echo instance with the
// same error mapping the server uses.
func newTestServer(tokens *TokenManager) (*echo.Echo, AuthService) {
	e := newTestEcho()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		c.JSON(apperror.SafeCode(err), map[string]string{
			"message": apperror.SafeMessage(err),
		})
	}

	service := &authService{repo: newFakeUserRepo(), tokens: tokens}
	limiter := ratelimit.New(config.RateLimitConfig{
		Auth: config.ClassQuota{Max: 100, Window: time.Minute},
	})
	RegisterRoutes(e, NewHandler(service), limiter, service)
	return e, service
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Register, login, call a protected route, then exercise the failure modes.
func TestRoutes_EndToEnd(t *testing.T) {
	tokens := newTestTokenManager()
	e, _ := newTestServer(tokens)

	// Register alice.
	rec := doJSON(e, http.MethodPost, "/users",
		`{"username":"alice","password":"secret123","email":"alice@example.com"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d: %s", rec.Code, rec.Body.String())
	}
	var registered struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Login returns a token.
	rec = doJSON(e, http.MethodPost, "/login",
		`{"username":"alice","password":"secret123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected a token")
	}

	// The protected profile route returns the caller's own record.
	rec = doJSON(e, http.MethodGet, "/users/me", "", login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /users/me, got %d: %s", rec.Code, rec.Body.String())
	}
	var profile User
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.ID != registered.User.ID {
		t.Errorf("expected own id %s, got %s", registered.User.ID, profile.ID)
	}

	// No token is a 401.
	rec = doJSON(e, http.MethodGet, "/users/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	// A token issued in the past beyond the TTL is a 401.
	tokens.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expired, err := tokens.Issue(&registered.User)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokens.now = time.Now

	rec = doJSON(e, http.MethodGet, "/users/me", "", expired)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with expired token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "expired") {
		t.Errorf("expected expiry message, got %s", rec.Body.String())
	}
}

// Unknown username and wrong password produce byte-identical responses.
func TestRoutes_CredentialFailuresIndistinguishable(t *testing.T) {
	e, _ := newTestServer(newTestTokenManager())

	rec := doJSON(e, http.MethodPost, "/users",
		`{"username":"alice","password":"secret123","email":"alice@example.com"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", rec.Code)
	}

	unknown := doJSON(e, http.MethodPost, "/login",
		`{"username":"nobody","password":"secret123"}`, "")
	wrongPass := doJSON(e, http.MethodPost, "/login",
		`{"username":"alice","password":"not-the-password"}`, "")

	if unknown.Code != http.StatusUnauthorized || wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknown.Code, wrongPass.Code)
	}
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Errorf("expected byte-identical bodies, got %q and %q",
			unknown.Body.String(), wrongPass.Body.String())
	}
}

func TestRoutes_DuplicateRegistration(t *testing.T) {
	e, _ := newTestServer(newTestTokenManager())

	body := `{"username":"alice","password":"secret123","email":"alice@example.com"}`
	if rec := doJSON(e, http.MethodPost, "/users", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/users", body, ""); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", rec.Code)
	}
}

func TestRoutes_DeletedAccountTokenRejected(t *testing.T) {
	e, _ := newTestServer(newTestTokenManager())

	doJSON(e, http.MethodPost, "/users",
		`{"username":"alice","password":"secret123","email":"alice@example.com"}`, "")
	rec := doJSON(e, http.MethodPost, "/login",
		`{"username":"alice","password":"secret123"}`, "")
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec := doJSON(e, http.MethodDelete, "/users/me", "", login.Token); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from delete, got %d", rec.Code)
	}

	// The still-valid token no longer resolves to an identity.
	if rec := doJSON(e, http.MethodGet, "/users/me", "", login.Token); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after account deletion, got %d", rec.Code)
	}
}

func TestRoutes_AuthClassRateLimit(t *testing.T) {
	e := newTestEcho()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		c.JSON(apperror.SafeCode(err), map[string]string{"message": apperror.SafeMessage(err)})
	}

	service := &authService{repo: newFakeUserRepo(), tokens: newTestTokenManager()}
	limiter := ratelimit.New(config.RateLimitConfig{
		Auth: config.ClassQuota{Max: 3, Window: time.Minute},
	})
	RegisterRoutes(e, NewHandler(service), limiter, service)

	body := `{"username":"alice","password":"wrong"}`
	for i := 0; i < 3; i++ {
		if rec := doJSON(e, http.MethodPost, "/login", body, ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 within quota, got %d", rec.Code)
		}
	}
	if rec := doJSON(e, http.MethodPost, "/login", body, ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 over quota, got %d", rec.Code)
	}
}

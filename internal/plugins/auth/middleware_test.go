package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
)

// callRequireAuth runs the middleware with the given Authorization header
// against a handler that records whether it was reached.
func callRequireAuth(t *testing.T, svc AuthService, authHeader string) (reached bool, identity *User, err error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	handler := RequireAuth(svc)(func(c echo.Context) error {
		reached = true
		identity = GetUser(c)
		return nil
	})
	err = handler(c)
	return reached, identity, err
}

func TestRequireAuth_ValidToken(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, Username: "alice"}, nil
		},
	})
	raw, err := svc.tokens.Issue(&User{ID: "user-123", Username: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reached, identity, err := callRequireAuth(t, svc, "Bearer "+raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Fatal("expected wrapped handler to run")
	}
	if identity == nil || identity.ID != "user-123" {
		t.Errorf("expected resolved user in context, got %+v", identity)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	svc := newTestAuthService(nil)

	reached, _, err := callRequireAuth(t, svc, "")
	if reached {
		t.Error("expected wrapped handler to be skipped")
	}
	assertAppError(t, err, 401)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	svc := newTestAuthService(nil)

	for _, header := range []string{"Bearer", "Bearer ", "Basic dXNlcjpwYXNz", "token abc"} {
		reached, _, err := callRequireAuth(t, svc, header)
		if reached {
			t.Errorf("expected handler to be skipped for header %q", header)
		}
		assertAppError(t, err, 401)
	}
}

func TestRequireAuth_CaseInsensitiveScheme(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, Username: "alice"}, nil
		},
	})
	raw, err := svc.tokens.Issue(&User{ID: "user-123", Username: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reached, _, err := callRequireAuth(t, svc, "bearer "+raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Error("expected lowercase scheme to be accepted")
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	svc := newTestAuthService(nil)

	reached, _, err := callRequireAuth(t, svc, "Bearer not-a-real-token")
	if reached {
		t.Error("expected wrapped handler to be skipped")
	}
	assertAppError(t, err, 401)
}

func TestRequireAuth_DeletedSubject(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return nil, apperror.NewNotFound("user not found")
		},
	})
	raw, err := svc.tokens.Issue(&User{ID: "deleted-user", Username: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reached, _, err := callRequireAuth(t, svc, "Bearer "+raw)
	if reached {
		t.Error("expected wrapped handler to be skipped")
	}
	assertAppError(t, err, 401)
}

func TestGetUser_Unauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if GetUser(c) != nil {
		t.Error("expected nil user on unauthenticated context")
	}
	if GetUserID(c) != "" {
		t.Error("expected empty user ID on unauthenticated context")
	}
}

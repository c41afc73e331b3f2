package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/eggledger/pkg/auth"
	"github.com/ghuser/eggledger/pkg/config"
	"github.com/ghuser/eggledger/pkg/logger"
	"github.com/ghuser/eggledger/services/account/application/handlers"
	appsvcs "github.com/ghuser/eggledger/services/account/application/services"
	accountdomain "github.com/ghuser/eggledger/services/account/domain"
	"github.com/ghuser/eggledger/services/account/domain/models"
)

// memoryUserRepo is an in-memory UserRepository keyed by username.
type memoryUserRepo struct {
	users map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*models.User)}
}

func (m *memoryUserRepo) Save(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.Username]; ok {
		return accountdomain.ErrUsernameTaken
	}
	m.users[user.Username] = user
	return nil
}

func (m *memoryUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, accountdomain.ErrUserNotFound
	}
	return u, nil
}

// newTestRouter mounts the account handlers the way AccountRoutes does, with
// a cookie-backed session store instead of Redis.
func newTestRouter() (chi.Router, sessions.Store) {
	log := logger.New(&config.Config{LogLevel: "error"})
	store := sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
	svcs := &appsvcs.Services{Account: appsvcs.NewAccountService(newMemoryUserRepo())}

	r := chi.NewRouter()
	r.Post("/register", handlers.NewPostRegisterHandler(svcs).Execute)
	r.Post("/login", handlers.NewPostLoginHandler(svcs, store, log).Execute)
	r.Post("/logout", handlers.NewPostLogoutHandler(store, log).Execute)
	return r, store
}

func doJSON(t *testing.T, router chi.Router, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestRegister(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/register",
		`{"username":"mary","password":"correct horse battery"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Username != "mary" {
		t.Errorf("unexpected username: %q", resp.Username)
	}
	if resp.Role != "operator" {
		t.Errorf("expected default role operator, got %q", resp.Role)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"username":"mary","password":"correct horse battery"}`
	if w := doJSON(t, router, http.MethodPost, "/register", body, nil); w.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/register", body, nil); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", w.Code)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/register",
		`{"username":"mary","password":"short"}`, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	router, _ := newTestRouter()

	doJSON(t, router, http.MethodPost, "/register",
		`{"username":"mary","password":"correct horse battery"}`, nil)

	w := doJSON(t, router, http.MethodPost, "/login",
		`{"username":"mary","password":"correct horse battery"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie on login response")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := newTestRouter()

	doJSON(t, router, http.MethodPost, "/register",
		`{"username":"mary","password":"correct horse battery"}`, nil)

	w := doJSON(t, router, http.MethodPost, "/login",
		`{"username":"mary","password":"wrong password"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/login",
		`{"username":"nobody","password":"whatever!"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginSessionPassesRequireAuth(t *testing.T) {
	router, store := newTestRouter()
	log := logger.New(&config.Config{LogLevel: "error"})

	doJSON(t, router, http.MethodPost, "/register",
		`{"username":"mary","password":"correct horse battery"}`, nil)
	w := doJSON(t, router, http.MethodPost, "/login",
		`{"username":"mary","password":"correct horse battery"}`, nil)

	protected := auth.RequireAuth(store, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/batches", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected login session to pass RequireAuth, got %d", rec.Code)
	}
}

func TestLogout_ExpiresSession(t *testing.T) {
	router, _ := newTestRouter()

	doJSON(t, router, http.MethodPost, "/register",
		`{"username":"mary","password":"correct horse battery"}`, nil)
	login := doJSON(t, router, http.MethodPost, "/login",
		`{"username":"mary","password":"correct horse battery"}`, nil)

	w := doJSON(t, router, http.MethodPost, "/logout", "", login.Result().Cookies())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var expired *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionName {
			expired = c
		}
	}
	if expired == nil {
		t.Fatal("expected session cookie on logout response")
	}
	if expired.MaxAge >= 0 {
		t.Errorf("expected negative MaxAge to expire the cookie, got %d", expired.MaxAge)
	}
}

package login_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/bubblemap/internal/app/features/login"
	loginstore "github.com/dalemusser/bubblemap/internal/app/store/logins"
	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/dalemusser/bubblemap/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.MemoryUsers, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	users := testutil.NewMemoryUsers()
	return login.NewHandler(users, sessionMgr, logger), users, sessionMgr
}

func TestHandleLoginPost_Success(t *testing.T) {
	handler, users, sessionMgr := newTestHandler(t)

	req := testutil.NewFormRequest("/login", url.Values{"username": {"maria"}}.Encode())
	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, req)

	rec.AssertRedirect(t, "/map")

	cookie, ok := testutil.CookieNamed(rec.ResponseRecorder, "test-session")
	if !ok {
		t.Fatal("expected session cookie to be set")
	}
	if users.Len() != 1 {
		t.Errorf("users: got %d, want 1", users.Len())
	}

	// The cookie now reads as a present session.
	next := testutil.NewRequest("GET", "/map")
	next.AddCookie(cookie)
	if !sessionMgr.HasSession(next) {
		t.Error("expected session after login")
	}
}

func TestHandleLoginPost_ReusesExistingUser(t *testing.T) {
	handler, users, _ := newTestHandler(t)

	for _, name := range []string{"maria", "MARIA"} {
		rec := testutil.NewRecorder()
		handler.HandleLoginPost(rec, testutil.NewFormRequest("/login", url.Values{"username": {name}}.Encode()))
		rec.AssertRedirect(t, "/map")
	}

	if users.Len() != 1 {
		t.Errorf("users: got %d, want 1", users.Len())
	}
}

func TestHandleLoginPost_InvalidName(t *testing.T) {
	handler, users, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, testutil.NewFormRequest("/login", "username=x"))

	rec.AssertStatus(t, http.StatusSeeOther)
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?error=") {
		t.Errorf("Location: got %q, want /login?error=...", loc)
	}
	if _, ok := testutil.CookieNamed(rec.ResponseRecorder, "test-session"); ok {
		t.Error("no session cookie expected on failure")
	}
	if users.Len() != 0 {
		t.Error("no user should be created")
	}
}

func TestHandleLoginPost_StoreFailure(t *testing.T) {
	handler, users, _ := newTestHandler(t)
	users.Err = errors.New("db down")

	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, testutil.NewFormRequest("/login", "username=maria"))

	rec.AssertStatus(t, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?error=") {
		t.Errorf("Location: got %q", loc)
	}
}

func TestHandleLoginPost_HTMX(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := testutil.NewFormRequest("/login", "username=maria")
	req.Header.Set("HX-Request", "true")
	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if hx := rec.Header().Get("HX-Redirect"); hx != "/map" {
		t.Errorf("HX-Redirect: got %q, want /map", hx)
	}
}

func TestHandleLoginPost_RecordsSignIn(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	logins := &testutil.MemoryLogins{}
	handler.Logins = logins

	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		handler.HandleLoginPost(rec, testutil.NewFormRequest("/login", url.Values{"username": {"maria"}}.Encode()))
		rec.AssertRedirect(t, "/map")
	}

	recs := logins.Records()
	if len(recs) != 2 {
		t.Fatalf("records: got %d, want 2", len(recs))
	}
	if !recs[0].Created || recs[1].Created {
		t.Errorf("created flags: got %v, %v; want true, false", recs[0].Created, recs[1].Created)
	}
	if recs[0].Provider != loginstore.ProviderForm {
		t.Errorf("provider: got %q", recs[0].Provider)
	}
}

func TestHandleLoginPost_RecordFailureDoesNotBlockSignIn(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	handler.Logins = &testutil.MemoryLogins{Err: errors.New("insert failed")}

	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, testutil.NewFormRequest("/login", url.Values{"username": {"maria"}}.Encode()))
	rec.AssertRedirect(t, "/map")
}

func TestTooManyAttempts(t *testing.T) {
	rec := testutil.NewRecorder()
	login.TooManyAttempts(rec, testutil.NewFormRequest("/login", "username=maria"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?error=Too+many") {
		t.Errorf("Location: got %q", loc)
	}
}

type resetSpy struct{ keys []string }

func (s *resetSpy) Reset(key string) { s.keys = append(s.keys, key) }

func TestHandleLoginPost_ResetsAttemptsOnSuccessOnly(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	spy := &resetSpy{}
	handler.Attempts = spy

	bad := testutil.NewFormRequest("/login", "username=x")
	handler.HandleLoginPost(testutil.NewRecorder(), bad)
	if len(spy.keys) != 0 {
		t.Fatalf("failed sign-in reset attempts: %v", spy.keys)
	}

	good := testutil.NewFormRequest("/login", "username=maria")
	good.RemoteAddr = "192.0.2.10:5000"
	handler.HandleLoginPost(testutil.NewRecorder(), good)
	if len(spy.keys) != 1 || spy.keys[0] != "192.0.2.10" {
		t.Errorf("reset keys: got %v, want [192.0.2.10]", spy.keys)
	}
}

package server_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkvault/internal/server"
)

// newTestServer wires the full stack — router, middleware, services, an
// in-memory database — exactly as production does, minus the listener.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	srv, err := server.New(server.Config{
		Port:      0,
		DBPath:    ":memory:",
		TokenTTL:  time.Hour,
		JWTSecret: "integration-test-secret-32-chars",
	}, logger)
	require.NoError(t, err)

	return srv.Router()
}

// do sends a request through the router and returns the recorder.
func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// registerAndLogin creates an account and returns its token.
func registerAndLogin(t *testing.T, h http.Handler, email string) string {
	t.Helper()

	rr := do(t, h, http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"email":%q,"username":"tester","password":"longenough"}`, email))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":"longenough"}`, email))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestServer_RequiresJWTSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	_, err := server.New(server.Config{DBPath: ":memory:"}, logger)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok"`)
}

func TestAuthFlow(t *testing.T) {
	h := newTestServer(t)

	// Register
	rr := do(t, h, http.MethodPost, "/api/auth/register", "",
		`{"email":"a@example.com","username":"alice","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	// The password hash must never appear in API output
	assert.NotContains(t, rr.Body.String(), "password")

	// Duplicate email
	rr = do(t, h, http.MethodPost, "/api/auth/register", "",
		`{"email":"a@example.com","username":"alice2","password":"longenough"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Short password
	rr = do(t, h, http.MethodPost, "/api/auth/register", "",
		`{"email":"b@example.com","username":"bob","password":"short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// Login sets the session cookie alongside the body token
	rr = do(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"a@example.com","password":"longenough"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	var tokenCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie, "login must set the token cookie")
	assert.True(t, tokenCookie.HttpOnly)

	// Wrong password
	rr = do(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"a@example.com","password":"wrongwrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// /api/me with the bearer token
	var login struct {
		Token string `json:"token"`
	}
	rr = do(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"a@example.com","password":"longenough"}`)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&login))

	rr = do(t, h, http.MethodGet, "/api/me", login.Token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"alice"`)

	// /api/me without a credential
	rr = do(t, h, http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBookmarkCRUD(t *testing.T) {
	h := newTestServer(t)
	token := registerAndLogin(t, h, "owner@example.com")

	// Anonymous access is rejected before any handler runs
	rr := do(t, h, http.MethodGet, "/api/bookmarks", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Create
	rr = do(t, h, http.MethodPost, "/api/bookmarks", token,
		`{"title":"Go blog","url":"https://go.dev/blog","tags":"go,reading","crawlInterval":"daily"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID            string `json:"id"`
		CrawlInterval string `json:"crawlInterval"`
		OwnerID       string `json:"ownerId"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "daily", created.CrawlInterval)
	assert.NotEmpty(t, created.OwnerID)

	// Interval defaults to weekly when omitted
	rr = do(t, h, http.MethodPost, "/api/bookmarks", token,
		`{"title":"No interval","url":"https://x.example"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"crawlInterval":"weekly"`)

	// Validation errors are 422
	rr = do(t, h, http.MethodPost, "/api/bookmarks", token, `{"url":"https://no-title.example"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = do(t, h, http.MethodPost, "/api/bookmarks", token,
		`{"title":"x","url":"https://x.example","crawlInterval":"yearly"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// Get
	rr = do(t, h, http.MethodGet, "/api/bookmarks/"+created.ID, token, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	// List
	rr = do(t, h, http.MethodGet, "/api/bookmarks", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []json.RawMessage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 2)

	// Search narrows
	rr = do(t, h, http.MethodGet, "/api/bookmarks?search=blog", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	list = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 1)

	// Bad pagination is 422, not clamped
	rr = do(t, h, http.MethodGet, "/api/bookmarks?limit=0", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/bookmarks?limit=abc", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/bookmarks?skip=-1", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// Patch: null clears description, omitted fields stay
	rr = do(t, h, http.MethodPatch, "/api/bookmarks/"+created.ID, token,
		`{"title":"Renamed","tags":null}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"title":"Renamed"`)
	assert.Contains(t, rr.Body.String(), `"tags":""`)
	assert.Contains(t, rr.Body.String(), `"url":"https://go.dev/blog"`)

	// Null on a required field is rejected
	rr = do(t, h, http.MethodPatch, "/api/bookmarks/"+created.ID, token, `{"url":null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// Delete
	rr = do(t, h, http.MethodDelete, "/api/bookmarks/"+created.ID, token, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/bookmarks/"+created.ID, token, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// Cross-tenant probes come back 404, byte-identical to a probe for an ID
// that was never issued.
func TestBookmarkIsolation(t *testing.T) {
	h := newTestServer(t)
	ownerToken := registerAndLogin(t, h, "owner@example.com")
	otherToken := registerAndLogin(t, h, "other@example.com")

	rr := do(t, h, http.MethodPost, "/api/bookmarks", ownerToken,
		`{"title":"mine","url":"https://mine.example"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	foreign := do(t, h, http.MethodGet, "/api/bookmarks/"+created.ID, otherToken, "")
	missing := do(t, h, http.MethodGet, "/api/bookmarks/never-issued-id", otherToken, "")

	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, missing.Body.String()[:20], foreign.Body.String()[:20],
		"foreign and missing responses should share the same shape")

	// The other user's listing stays empty
	rr = do(t, h, http.MethodGet, "/api/bookmarks", otherToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	// And the foreign user cannot delete it
	rr = do(t, h, http.MethodDelete, "/api/bookmarks/"+created.ID, otherToken, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, h, http.MethodGet, "/api/bookmarks/"+created.ID, ownerToken, "")
	assert.Equal(t, http.StatusOK, rr.Code, "owner's bookmark must survive the foreign delete")
}

func TestNoteCRUD(t *testing.T) {
	h := newTestServer(t)
	token := registerAndLogin(t, h, "owner@example.com")

	rr := do(t, h, http.MethodPost, "/api/notes", token,
		`{"title":"meeting","content":"crawler cadence discussion","tags":"work"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	rr = do(t, h, http.MethodGet, "/api/notes?search=crawler", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []json.RawMessage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 1)

	// Content is clearable by explicit null
	rr = do(t, h, http.MethodPatch, "/api/notes/"+created.ID, token, `{"content":null}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"content":""`)

	rr = do(t, h, http.MethodDelete, "/api/notes/"+created.ID, token, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestPublicFeeds(t *testing.T) {
	h := newTestServer(t)
	token := registerAndLogin(t, h, "owner@example.com")

	seed := []string{
		`{"title":"Daily","url":"https://daily.example","crawlInterval":"daily"}`,
		`{"title":"Weekly","url":"https://weekly.example","crawlInterval":"weekly"}`,
		`{"title":"Hidden","url":"https://hidden.example","crawlInterval":"never"}`,
	}
	for _, body := range seed {
		rr := do(t, h, http.MethodPost, "/api/bookmarks", token, body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	// All feed routes are anonymous
	rr := do(t, h, http.MethodGet, "/seed", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), "https://daily.example")
	assert.Contains(t, rr.Body.String(), "https://weekly.example")
	assert.NotContains(t, rr.Body.String(), "https://hidden.example")

	rr = do(t, h, http.MethodGet, "/seed.json", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "ownerId")
	assert.NotContains(t, rr.Body.String(), "hidden.example")

	rr = do(t, h, http.MethodGet, "/seed/intervals", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "never")

	rr = do(t, h, http.MethodGet, "/seed/daily", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "https://daily.example")
	assert.NotContains(t, rr.Body.String(), "https://weekly.example")

	// Unknown interval segment is a 404
	rr = do(t, h, http.MethodGet, "/seed/yearly", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Withdrawing a bookmark (interval → never) removes it from the feed
	rr = do(t, h, http.MethodGet, "/api/bookmarks?search=Daily", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)

	rr = do(t, h, http.MethodPatch, "/api/bookmarks/"+list[0].ID, token, `{"crawlInterval":"never"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/seed", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "https://daily.example")
}

func TestOAuthRoutesAbsentWhenUnconfigured(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/auth/github/login", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jrsteele09/go-mail-gateway/gateway"
	"github.com/jrsteele09/go-mail-gateway/identity/identityfake"
	"github.com/jrsteele09/go-mail-gateway/internal/config"
	"github.com/jrsteele09/go-mail-gateway/internal/metrics"
	"github.com/jrsteele09/go-mail-gateway/mail"
	"github.com/jrsteele09/go-mail-gateway/mail/mailfake"
	"github.com/jrsteele09/go-mail-gateway/server"
	"github.com/jrsteele09/go-mail-gateway/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	testCode        = "code-1"
	testAccessToken = "access-1"
	testOrigin      = "https://app.example.com"
)

var testProfile = sessions.Record{
	"sub":   "1234567890",
	"email": "jane@example.com",
	"name":  "Jane Doe",
}

type testFixture struct {
	store    *sessions.InMemoryRepo
	provider *identityfake.FakeProvider
	mailbox  *mailfake.FakeMailbox
	srv      *httptest.Server
	client   *http.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	t.Setenv("ENV", "TEST")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("ALLOWED_ORIGINS", testOrigin)

	f := &testFixture{
		store:    sessions.NewInMemoryRepo(time.Hour),
		provider: identityfake.NewFakeProvider(),
		mailbox:  mailfake.NewFakeMailbox("m1", "m2"),
	}
	f.provider.Allow(testCode, testAccessToken, testProfile)
	f.mailbox.Headers["m1"] = []mail.Header{
		{Name: "Subject", Value: "Hello"},
		{Name: "From", Value: "bob@example.com"},
		{Name: "X-Spam", Value: "no"},
	}
	f.mailbox.Headers["m2"] = []mail.Header{{Name: "Date", Value: "Mon, 1 Jan 2024 10:00:00 +0000"}}

	reg := prometheus.NewRegistry()
	gw := gateway.New(f.store, f.provider, f.mailbox.Factory(nil), mail.NewLister(10, []string{"Subject", "From", "Date"}))
	s, err := server.New(config.New(), server.Dependencies{
		Gateway:  gw,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Assets: fstest.MapFS{
			"index.html":     {Data: []byte("<h1>landing</h1>")},
			"dashboard.html": {Data: []byte("<h1>dashboard</h1>")},
		},
	})
	require.NoError(t, err)

	f.srv = httptest.NewServer(s)
	t.Cleanup(f.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	f.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

func (f *testFixture) do(t *testing.T, method, path string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, f.srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// startLogin follows /login and returns the state the provider would echo back.
func (f *testFixture) startLogin(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodGet, server.RouteLogin, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(location.String(), identityfake.AuthURL))
	require.Equal(t, "offline", location.Query().Get("access_type"))
	require.Equal(t, "consent", location.Query().Get("prompt"))

	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	state := f.startLogin(t)
	resp := f.do(t, http.MethodGet, server.RouteCallback+"?code="+testCode+"&state="+url.QueryEscape(state), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RouteDashboard, resp.Header.Get("Location"))
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

type emailsBody struct {
	Messages []mail.MessageSummary `json:"messages"`
	Error    string                `json:"error"`
}

func TestMe_Anonymous(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.do(t, http.MethodGet, server.RouteAPIMe, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	me := decode[gateway.Identity](t, resp)
	require.False(t, me.Authenticated)
	require.Nil(t, me.User)
}

func TestLoginFlow_EndToEnd(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	me := decode[gateway.Identity](t, f.do(t, http.MethodGet, server.RouteAPIMe, nil))
	require.True(t, me.Authenticated)
	require.Equal(t, "jane@example.com", me.User["email"])
	require.Equal(t, 1, f.store.Len())

	resp := f.do(t, http.MethodGet, server.RouteAPIEmails, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[emailsBody](t, resp)
	require.Equal(t, []mail.MessageSummary{
		{ID: "m1", Headers: map[string]string{"Subject": "Hello", "From": "bob@example.com"}},
		{ID: "m2", Headers: map[string]string{"Date": "Mon, 1 Jan 2024 10:00:00 +0000"}},
	}, body.Messages)
	require.Equal(t, int64(10), f.mailbox.MaxResultsRequested())
}

func TestLoginFlow_SessionCookieAttributes(t *testing.T) {
	f := setupTestFixture(t)
	state := f.startLogin(t)

	resp := f.do(t, http.MethodGet, server.RouteCallback+"?code="+testCode+"&state="+url.QueryEscape(state), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var sid *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			sid = c
		}
	}
	require.NotNil(t, sid)
	require.True(t, sid.HttpOnly)
	require.False(t, sid.Secure)
	require.Equal(t, http.SameSiteLaxMode, sid.SameSite)
	require.Equal(t, "/", sid.Path)
}

func TestCallback_Failures(t *testing.T) {
	tests := []struct {
		name  string
		query func(state string) string
		setup func(f *testFixture)
	}{
		{
			name:  "missing code",
			query: func(state string) string { return "?state=" + url.QueryEscape(state) },
		},
		{
			name:  "unknown code",
			query: func(state string) string { return "?code=nope&state=" + url.QueryEscape(state) },
		},
		{
			name:  "state mismatch",
			query: func(string) string { return "?code=" + testCode + "&state=forged" },
		},
		{
			name:  "missing state",
			query: func(string) string { return "?code=" + testCode },
		},
		{
			name:  "provider denied",
			query: func(state string) string { return "?error=access_denied&state=" + url.QueryEscape(state) },
		},
		{
			name:  "userinfo failure",
			query: func(state string) string { return "?code=" + testCode + "&state=" + url.QueryEscape(state) },
			setup: func(f *testFixture) { f.provider.UserInfoErr = errors.New("userinfo down") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			state := f.startLogin(t)

			resp := f.do(t, http.MethodGet, server.RouteCallback+tt.query(state), nil)
			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			require.Equal(t, "OAuth error", strings.TrimSpace(readBody(t, resp)))
			require.Equal(t, 0, f.store.Len())

			me := decode[gateway.Identity](t, f.do(t, http.MethodGet, server.RouteAPIMe, nil))
			require.False(t, me.Authenticated)
		})
	}
}

func TestCallback_StateIsSingleUse(t *testing.T) {
	f := setupTestFixture(t)
	state := f.startLogin(t)
	query := server.RouteCallback + "?code=" + testCode + "&state=" + url.QueryEscape(state)

	require.Equal(t, http.StatusFound, f.do(t, http.MethodGet, query, nil).StatusCode)
	require.Equal(t, http.StatusInternalServerError, f.do(t, http.MethodGet, query, nil).StatusCode)
}

func TestEmails_RequiresSession(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.do(t, http.MethodGet, server.RouteAPIEmails, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
	require.Empty(t, f.mailbox.Calls())
}

func TestEmails_ForgedCookieIsAnonymous(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	u, err := url.Parse(f.srv.URL)
	require.NoError(t, err)
	f.client.Jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "not-a-signed-id", Path: "/"}})

	resp := f.do(t, http.MethodGet, server.RouteAPIEmails, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Empty(t, f.mailbox.Calls())
}

func TestEmails_ProviderFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.mailbox.GetErrs["m2"] = errors.New("backend error")

	resp := f.do(t, http.MethodGet, server.RouteAPIEmails, nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[emailsBody](t, resp)
	require.Equal(t, "Failed to fetch emails", body.Error)
	require.Nil(t, body.Messages)
}

func TestEmails_EmptyMailbox(t *testing.T) {
	f := setupTestFixture(t)
	f.mailbox.IDs = nil
	f.login(t)

	resp := f.do(t, http.MethodGet, server.RouteAPIEmails, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"messages":[]}`, readBody(t, resp))
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	resp := f.do(t, http.MethodPost, server.RouteLogout, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
	require.Equal(t, 0, f.store.Len())

	me := decode[gateway.Identity](t, f.do(t, http.MethodGet, server.RouteAPIMe, nil))
	require.False(t, me.Authenticated)
	require.Equal(t, http.StatusFound, f.do(t, http.MethodGet, server.RouteAPIEmails, nil).StatusCode)
}

func TestLogout_WithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.do(t, http.MethodPost, server.RouteLogout, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLogout_RequiresPost(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	resp := f.do(t, http.MethodGet, server.RouteLogout, nil)
	require.NotEqual(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, 1, f.store.Len())
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		resp := f.do(t, http.MethodOptions, server.RouteAPIEmails, http.Header{
			"Origin":                        {testOrigin},
			"Access-Control-Request-Method": {"GET"},
		})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, testOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
		require.Equal(t, "GET, POST", resp.Header.Get("Access-Control-Allow-Methods"))
	})

	t.Run("other origin gets no grant", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, server.RouteAPIMe, http.Header{"Origin": {"https://evil.example.com"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestStaticPages(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.do(t, http.MethodGet, server.RouteHome, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.Contains(t, readBody(t, resp), "landing")

	resp = f.do(t, http.MethodGet, server.RouteDashboard, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "dashboard")

	resp = f.do(t, http.MethodGet, "/missing.html", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEmbeddedAssets(t *testing.T) {
	for _, name := range []string{"index.html", "dashboard.html"} {
		rec := httptest.NewRecorder()
		require.NoError(t, server.StreamFile(rec, nil, server.StaticFilesFS(), name))
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		require.Contains(t, rec.Body.String(), "/api/me")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	resp := f.do(t, http.MethodGet, server.RouteHealth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))

	resp = f.do(t, http.MethodGet, server.RouteMetrics, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	require.Contains(t, body, `mailgateway_logins_total{result="success"} 1`)
	require.Contains(t, body, `mailgateway_http_requests_total{method="GET",route="GET /oauth2callback",status="302"} 1`)
}

func TestNew_RequiresGateway(t *testing.T) {
	_, err := server.New(config.New(), server.Dependencies{})
	require.Error(t, err)
}

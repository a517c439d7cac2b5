package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ta *testApp) postLogin(t *testing.T, csrfTok, email, password string) *http.Response {
	t.Helper()
	form := strings.NewReader("csrf=" + csrfTok + "&email=" + email + "&password=" + password)
	req := httptest.NewRequest(http.MethodPost, "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	return ta.do(t, req)
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	ta := newTestApp(t)
	tok := ta.csrfToken(t)

	resp := ta.postLogin(t, tok, "admin@realtysite.test", "Wrongpass1!")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, ta.logs.FilterMessage("auth.login.fail").Len())

	resp = ta.postLogin(t, tok, "admin@realtysite.test", "Passw0rd!")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
	assert.NotEmpty(t, cookieValue(resp, "sid"))
	assert.Equal(t, 1, ta.logs.FilterMessage("auth.login.success").Len())

	// five attempts per window on the login route
	for i := 0; i < 3; i++ {
		ta.postLogin(t, tok, "agent@realtysite.test", "Wrongpass1!")
	}
	resp = ta.postLogin(t, tok, "agent@realtysite.test", "Passw0rd!")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 1, ta.logs.FilterMessage("rate.login.hit").Len())
}

func TestAdminRequiresAdminRole(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	agent := ta.signIn(t, "u-agent")
	resp = ta.do(t, agent.attach(httptest.NewRequest(http.MethodGet, "/admin", nil)))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ta.do(t, agent.postJSON("/admin/content/anything/archive", nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	denied := ta.logs.FilterMessage("access.denied.admin").All()
	require.Len(t, denied, 2)
	assert.Equal(t, "/admin", denied[0].ContextMap()["path"])
}

func TestAdminCommandsNeedCSRF(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.signIn(t, "u-admin")
	it := ta.createItem(t, admin, "EVENT", nil)

	noToken := session{sid: admin.sid}
	resp := ta.do(t, noToken.postJSON("/admin/content/"+it.ID+"/force-push", nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 1, ta.logs.FilterMessage("csrf.fail").Len())

	forged := session{sid: admin.sid, csrf: "forged-token"}
	resp = ta.do(t, forged.postJSON("/admin/content/"+it.ID+"/force-push", nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.signIn(t, "u-admin")

	form := strings.NewReader("csrf=" + admin.csrf)
	req := httptest.NewRequest(http.MethodPost, "/logout", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := ta.do(t, admin.attach(req))
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = ta.do(t, admin.attach(httptest.NewRequest(http.MethodGet, "/admin", nil)))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublicPagesRender(t *testing.T) {
	ta := newTestApp(t)
	for path, want := range map[string]string{
		"/":            "Upcoming events",
		"/about":       "About Us",
		"/development": "Development",
		"/services":    "Services",
		"/team":        "Our Team",
		"/events":      "No events right now",
		"/login":       "Sign in",
	} {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), want, path)
	}

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ta.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "realtysite_visible_items")
}

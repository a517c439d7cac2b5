package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"realtysite/internal/assets"
	"realtysite/internal/config"
	"realtysite/internal/http/handlers"
	applog "realtysite/internal/log"
	"realtysite/internal/repos"
)

var t0 = time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)

// pngBytes carries the PNG signature, which is all type sniffing looks at.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	store *assets.LocalStore
	logs  *observer.ObservedLogs

	mu  sync.Mutex
	now time.Time
}

func (ta *testApp) clock() time.Time {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	return ta.now
}

func (ta *testApp) setNow(t time.Time) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.now = t
}

// newTestApp builds the real route table over an in-memory database and a
// temp-dir asset store, with logs captured by an observer.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(core)
	applog.SetLogger(zl)
	t.Cleanup(func() { applog.SetLogger(nil) })

	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := assets.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ta := &testApp{db: db, store: store, logs: logs, now: t0}
	cfg := config.Config{MaxUploadMB: 2, TimeZone: "UTC"}
	deps := handlers.NewDeps(db, cfg, store, zl, ta.clock)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Use(handlers.LoadUser(deps.Auth))
	app.Use(csrf.New(handlers.CSRFConfig(false)))
	deps.Mount(app)
	ta.app = app
	return ta
}

func (ta *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// session is a signed-in browser: sid cookie plus a csrf token.
type session struct {
	sid  string
	csrf string
}

func (ta *testApp) csrfToken(t *testing.T) string {
	t.Helper()
	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/login", nil))
	tok := cookieValue(resp, "csrf_")
	require.NotEmpty(t, tok, "csrf cookie missing")
	return tok
}

// signIn binds sid to a seeded user directly.
func (ta *testApp) signIn(t *testing.T, userID string) session {
	t.Helper()
	sid := "sid-" + userID
	require.NoError(t, repos.NewUserRepo(ta.db).BindSession(sid, userID))
	return session{sid: sid, csrf: ta.csrfToken(t)}
}

func (s session) attach(req *http.Request) *http.Request {
	if s.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: s.sid})
	}
	if s.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: s.csrf})
		req.Header.Set("X-Csrf-Token", s.csrf)
	}
	return req
}

func (s session) postJSON(path string, body any) *http.Request {
	var r io.Reader = http.NoBody
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return s.attach(req)
}

type filePart struct {
	name string
	data []byte
}

func (s session) postUpload(t *testing.T, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/admin/content", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return s.attach(req)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Path    string `json:"path"`
	} `json:"error"`
}

type itemBody struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	State          string   `json:"state"`
	EffectiveState string   `json:"effectiveState"`
	ForcePublished bool     `json:"forcePublished"`
	Version        int64    `json:"version"`
	Assets         []struct {
		Key string `json:"key"`
	} `json:"assets"`
}

// createItem uploads one flyer as the given admin session.
func (ta *testApp) createItem(t *testing.T, s session, kind string, extra map[string]string) itemBody {
	t.Helper()
	fields := map[string]string{"kind": kind, "title": "Open house"}
	for k, v := range extra {
		fields[k] = v
	}
	resp := ta.do(t, s.postUpload(t, fields, filePart{"flyer.png", pngBytes}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var it itemBody
	decode(t, resp, &it)
	return it
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deepcrawler/internal/crawler"
	"deepcrawler/internal/db"
	"deepcrawler/internal/repository/sqlite"
	"deepcrawler/internal/service"
)

type testApp struct {
	router   *gin.Engine
	jwt      *service.JWTService
	upstream *upstreamStub
}

// upstreamStub simula el servicio crawler.
type upstreamStub struct {
	status  int
	body    string
	prompts []string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	stub := &upstreamStub{status: http.StatusOK, body: `{"prompt":"p","response":{"response_text":"Hola desde el crawler"}}`}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.Unmarshal(raw, &req)
		stub.prompts = append(stub.prompts, req.Prompt)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stub.status)
		_, _ = w.Write([]byte(stub.body))
	}))
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	users := sqlite.NewUserRepository(conn)
	sessions := sqlite.NewSessionRepository(conn)
	messages := sqlite.NewMessageRepository(conn)
	client := crawler.NewClient(srv.URL, "", 2*time.Second, logger)

	jwtSvc := service.NewJWTService("test-secret", time.Hour, service.NewMemoryRevocationStore())
	userSvc := service.NewUserService(logger, users, service.NewMemoryRateLimiter(time.Minute, 100))
	chatSvc := service.NewChatService(logger, users, sessions, service.NewMessageService(messages), client)

	router := NewRouter(logger,
		RouterOptions{CORSOrigins: []string{"http://localhost:5173"}, JWT: jwtSvc},
		NewUserHandler(logger, userSvc, jwtSvc),
		NewChatHandler(logger, chatSvc, client),
		NewHealthHandler(logger, conn.PingContext, nil),
	)
	return &testApp{router: router, jwt: jwtSvc, upstream: stub}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type filePart struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func (a *testApp) doMultipart(t *testing.T, method, path string, fields map[string]string, file *filePart) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(file.data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func (a *testApp) signUp(t *testing.T, username, email, password string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/sing-up", map[string]string{
		"username": username, "email": email, "password": password, "confirmPassword": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sign-up expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func (a *testApp) login(t *testing.T, email, password string) (string, map[string]any) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	token, _ := body["token"].(string)
	data, _ := body["data"].(map[string]any)
	return token, data
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tulisify/tulisify/internal/auth"
	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/container"
	"github.com/tulisify/tulisify/internal/database"
	"github.com/tulisify/tulisify/internal/database/books"
	"github.com/tulisify/tulisify/internal/database/users"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/storage"
	"github.com/tulisify/tulisify/internal/storage/providers/local"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *database.Database
	users  *users.Repository
	auth   *auth.Service
	store  *local.Provider
	assets *storage.Assets
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	assets := storage.NewAssets(store)
	assets.SetPublicURL("http://books.test")

	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	userRepo := users.NewRepository(db.DB)
	svc := auth.NewService(userRepo, tokens, config.Auth{BcryptCost: 4})

	app := container.New(container.Deps{
		Books: books.NewRepository(db.DB, assets),
		Auth:  auth.NewLocalRepository(svc),
	})

	router := NewRouter(RouterConfig{
		Container:      app,
		Database:       db,
		Assets:         assets,
		MaxUploadSize:  1 << 20,
		AuthMiddleware: auth.NewMiddleware(svc),
		Version:        "test",
	})

	return &testServer{router: router, db: db, users: userRepo, auth: svc, store: store, assets: assets}
}

// tokenFor creates a user with the given role and returns a bearer token.
func (s *testServer) tokenFor(t *testing.T, email string, role entities.UserRole) string {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)

	user := &entities.User{Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, s.users.Create(context.Background(), user))

	token, err := s.auth.IssueToken(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) seedBook(t *testing.T, book entities.Book) entities.Book {
	t.Helper()
	require.NoError(t, s.db.DB.Create(&book).Error)
	return book
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

type part struct {
	name     string
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.name, f.filename)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

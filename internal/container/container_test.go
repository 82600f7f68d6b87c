package container

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/tokenstore"
)

func TestNewRemote_UseCasesShareRepositories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_ = json.NewEncoder(w).Encode(entities.AuthResponse{User: entities.User{ID: "u1"}, Token: "tok"})
		case "/api/books/count":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]int{"count": 3})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tokens := tokenstore.NewMemoryStore()
	c := NewRemote(config.Client{APIBaseURL: server.URL + "/api", APITimeout: time.Second}, tokens)

	login := c.Login.Execute(context.Background(), entities.LoginRequest{Email: "admin@tulisify.com", Password: "admin123456"})
	require.True(t, login.IsSuccess())

	count := c.CountBooks.Execute(context.Background())
	require.True(t, count.IsSuccess())
	assert.Equal(t, int64(3), count.Value())
}

func TestNew_AllFieldsWired(t *testing.T) {
	c := New(Deps{})

	assert.NotNil(t, c.Login)
	assert.NotNil(t, c.Register)
	assert.NotNil(t, c.Logout)
	assert.NotNil(t, c.CurrentUser)
	assert.NotNil(t, c.GetBooks)
	assert.NotNil(t, c.GetBook)
	assert.NotNil(t, c.CountBooks)
	assert.NotNil(t, c.CreateBook)
	assert.NotNil(t, c.UpdateBook)
	assert.NotNil(t, c.DeleteBook)
}

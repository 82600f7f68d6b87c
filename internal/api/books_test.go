package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
	"github.com/tulisify/tulisify/internal/tokenstore"
)

func newTestRepos(t *testing.T, handler http.HandlerFunc) (*BookAPIRepository, *AuthAPIRepository, *tokenstore.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := tokenstore.NewMemoryStore()
	client := NewClient(server.URL+"/api", 5*time.Second, tokens)
	return NewBookAPIRepository(client), NewAuthAPIRepository(client), tokens
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   result.Kind
	}{
		{http.StatusBadRequest, result.KindValidation},
		{http.StatusUnauthorized, result.KindUnauthorized},
		{http.StatusForbidden, result.KindUnauthorized},
		{http.StatusNotFound, result.KindNotFound},
		{http.StatusConflict, result.KindConflict},
		{http.StatusInternalServerError, result.KindServer},
		{http.StatusBadGateway, result.KindServer},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForStatus(tt.status), "status %d", tt.status)
	}
}

func TestBookAPIRepository_FindAll(t *testing.T) {
	var gotQuery string
	books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"books": []entities.Book{{ID: "1", Title: "Pulang"}},
			"count": 1,
		})
	})

	res := books.FindAll(context.Background(), entities.BookFilters{Search: "pul", Category: "all"})

	require.True(t, res.IsSuccess())
	require.Len(t, res.Value(), 1)
	assert.Equal(t, "Pulang", res.Value()[0].Title)
	assert.Equal(t, "search=pul", gotQuery, "empty and 'all' filters are not sent")
}

func TestBookAPIRepository_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantKind result.Kind
	}{
		{"error field", http.StatusBadRequest, `{"error":"Invalid year"}`, "Invalid year", result.KindValidation},
		{"message field", http.StatusConflict, `{"message":"Duplicate"}`, "Duplicate", result.KindConflict},
		{"msg field", http.StatusInternalServerError, `{"msg":"boom"}`, "boom", result.KindServer},
		{"no body", http.StatusInternalServerError, ``, "Failed to fetch books", result.KindServer},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "Failed to fetch books", result.KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			res := books.FindAll(context.Background(), entities.BookFilters{})

			require.True(t, res.IsFailure())
			assert.Equal(t, tt.wantMsg, res.ErrorMessage())
			assert.Equal(t, tt.wantKind, res.Kind())
		})
	}
}

func TestBookAPIRepository_NetworkErrors(t *testing.T) {
	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		books := NewBookAPIRepository(NewClient(url, time.Second, nil))
		res := books.Count(context.Background())

		require.True(t, res.IsFailure())
		assert.Equal(t, "Network error occurred", res.ErrorMessage())
		assert.Equal(t, result.KindTransport, res.Kind())
	})

	t.Run("malformed success body", func(t *testing.T) {
		books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "not json")
		})

		res := books.FindAll(context.Background(), entities.BookFilters{})

		require.True(t, res.IsFailure())
		assert.Equal(t, "Network error occurred", res.ErrorMessage())
	})
}

func TestBookAPIRepository_FindByID(t *testing.T) {
	books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/books/b1" {
			writeJSON(w, http.StatusOK, entities.Book{ID: "b1", Title: "Hujan"})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
	})

	found := books.FindByID(context.Background(), "b1")
	require.True(t, found.IsSuccess())
	require.NotNil(t, found.Value())
	assert.Equal(t, "Hujan", found.Value().Title)

	missing := books.FindByID(context.Background(), "nope")
	require.True(t, missing.IsSuccess())
	assert.Nil(t, missing.Value())
}

func TestBookAPIRepository_CreateJSON(t *testing.T) {
	var got map[string]any
	var auth string
	books, _, tokens := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, entities.Book{ID: "1", Title: "Pulang"})
	})
	require.NoError(t, tokens.Set(context.Background(), "jwt-token"))

	res := books.Create(context.Background(), entities.CreateBookRequest{
		Title:    "Pulang",
		Author:   "Tere Liye",
		Year:     2015,
		Category: entities.CategorySU,
		Cover:    entities.AssetRef("covers/1.jpg"),
	})

	require.True(t, res.IsSuccess())
	assert.Equal(t, "1", res.Value().ID)
	assert.Equal(t, "Bearer jwt-token", auth)
	assert.Equal(t, "Pulang", got["title"])
	assert.Equal(t, float64(2015), got["year"])
	assert.Equal(t, "SU", got["category"])
	assert.Equal(t, "covers/1.jpg", got["cover"])
}

func TestBookAPIRepository_CreateMultipart(t *testing.T) {
	books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Pergi", r.FormValue("title"))
		assert.Equal(t, "2018", r.FormValue("year"))
		assert.Equal(t, "13+", r.FormValue("category"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "pergi.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))

		writeJSON(w, http.StatusCreated, entities.Book{ID: "2", Title: "Pergi"})
	})

	res := books.Create(context.Background(), entities.CreateBookRequest{
		Title:    "Pergi",
		Author:   "Tere Liye",
		Year:     2018,
		Category: entities.CategoryThirteenPlus,
		File:     entities.Asset{Upload: &entities.FileUpload{Name: "pergi.pdf", Data: []byte("%PDF-1.4")}},
	})

	require.True(t, res.IsSuccess())
	assert.Equal(t, "2", res.Value().ID)
}

func TestBookAPIRepository_UpdateSendsOnlyPresentFields(t *testing.T) {
	var got map[string]any
	books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/books/b1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, entities.Book{ID: "b1", Title: "New"})
	})

	title := "New"
	res := books.Update(context.Background(), entities.UpdateBookRequest{ID: "b1", Title: &title})

	require.True(t, res.IsSuccess())
	assert.Equal(t, map[string]any{"title": "New"}, got)
}

func TestBookAPIRepository_ConditionalMutations(t *testing.T) {
	books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	title := "x"
	upd := books.Update(context.Background(), entities.UpdateBookRequest{ID: "gone", Title: &title})
	require.True(t, upd.IsFailure())
	assert.Equal(t, "Book not found", upd.ErrorMessage())
	assert.Equal(t, result.KindNotFound, upd.Kind())

	del := books.Delete(context.Background(), "gone")
	require.True(t, del.IsFailure())
	assert.Equal(t, "Book not found", del.ErrorMessage())
	assert.Equal(t, result.KindNotFound, del.Kind())
}

func TestBookAPIRepository_Count(t *testing.T) {
	books, _, _ := newTestRepos(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books/count", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]int{"count": 3})
	})

	res := books.Count(context.Background())
	require.True(t, res.IsSuccess())
	assert.Equal(t, int64(3), res.Value())
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/result"
)

// BookAPIRepository is a repository.BookRepository over /books.
type BookAPIRepository struct {
	client *Client
}

func NewBookAPIRepository(client *Client) *BookAPIRepository {
	return &BookAPIRepository{client: client}
}

type bookList struct {
	Books []entities.Book `json:"books"`
	Count int64           `json:"count"`
}

type bookCount struct {
	Count int64 `json:"count"`
}

func bookPath(id string) string {
	return "/books/" + url.PathEscape(id)
}

func (r *BookAPIRepository) FindAll(ctx context.Context, filters entities.BookFilters) result.Result[[]entities.Book] {
	q := url.Values{}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.HasCategory() {
		q.Set("category", filters.Category)
	}
	if filters.Year != 0 {
		q.Set("year", strconv.Itoa(filters.Year))
	}
	if filters.Author != "" {
		q.Set("author", filters.Author)
	}

	resp, err := r.client.do(ctx, http.MethodGet, "/books", q, nil)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("list books request failed")
		return networkError[[]entities.Book]()
	}
	if !resp.ok() {
		return failure[[]entities.Book](resp, "Failed to fetch books")
	}

	list := decode[bookList](resp)
	if list.IsFailure() {
		return result.Propagate[[]entities.Book](list)
	}
	books := list.Value().Books
	if books == nil {
		books = []entities.Book{}
	}
	return result.Success(books)
}

// FindByID succeeds with nil on 404.
func (r *BookAPIRepository) FindByID(ctx context.Context, id string) result.Result[*entities.Book] {
	resp, err := r.client.do(ctx, http.MethodGet, bookPath(id), nil, nil)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("get book request failed")
		return networkError[*entities.Book]()
	}
	if resp.status == http.StatusNotFound {
		return result.Success[*entities.Book](nil)
	}
	if !resp.ok() {
		return failure[*entities.Book](resp, "Failed to fetch book")
	}

	book := decode[entities.Book](resp)
	if book.IsFailure() {
		return result.Propagate[*entities.Book](book)
	}
	b := book.Value()
	return result.Success(&b)
}

func (r *BookAPIRepository) Create(ctx context.Context, req entities.CreateBookRequest) result.Result[entities.Book] {
	fields := map[string]string{
		"title":    req.Title,
		"author":   req.Author,
		"year":     strconv.Itoa(req.Year),
		"category": string(req.Category),
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	assets := map[string]*entities.Asset{"cover": &req.Cover, "file": &req.File}

	body, err := encodeBook(fields, assets)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("encode book failed")
		return networkError[entities.Book]()
	}
	return r.send(ctx, http.MethodPost, "/books", body, "Failed to create book")
}

// Update sends only the fields present in req. A 404 means the book was
// gone at the time of the update.
func (r *BookAPIRepository) Update(ctx context.Context, req entities.UpdateBookRequest) result.Result[entities.Book] {
	fields := map[string]string{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Author != nil {
		fields["author"] = *req.Author
	}
	if req.Year != nil {
		fields["year"] = strconv.Itoa(*req.Year)
	}
	if req.Category != nil {
		fields["category"] = string(*req.Category)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	assets := map[string]*entities.Asset{"cover": req.Cover, "file": req.File}

	body, err := encodeBook(fields, assets)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("encode book failed")
		return networkError[entities.Book]()
	}
	return r.send(ctx, http.MethodPut, bookPath(req.ID), body, "Failed to update book")
}

func (r *BookAPIRepository) Delete(ctx context.Context, id string) result.Result[struct{}] {
	resp, err := r.client.do(ctx, http.MethodDelete, bookPath(id), nil, nil)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("delete book request failed")
		return networkError[struct{}]()
	}
	if resp.status == http.StatusNotFound {
		return notFound[struct{}](resp)
	}
	if !resp.ok() {
		return failure[struct{}](resp, "Failed to delete book")
	}
	return result.Success(struct{}{})
}

func (r *BookAPIRepository) Count(ctx context.Context) result.Result[int64] {
	resp, err := r.client.do(ctx, http.MethodGet, "/books/count", nil, nil)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("count books request failed")
		return networkError[int64]()
	}
	if !resp.ok() {
		return failure[int64](resp, "Failed to get book count")
	}

	count := decode[bookCount](resp)
	if count.IsFailure() {
		return result.Propagate[int64](count)
	}
	return result.Success(count.Value().Count)
}

func (r *BookAPIRepository) send(ctx context.Context, method, path string, body *payload, fallback string) result.Result[entities.Book] {
	resp, err := r.client.do(ctx, method, path, nil, body)
	if err != nil {
		logger.For(ctx).WithError(err).Debugf("%s %s failed", method, path)
		return networkError[entities.Book]()
	}
	if resp.status == http.StatusNotFound && method == http.MethodPut {
		return notFound[entities.Book](resp)
	}
	if !resp.ok() {
		return failure[entities.Book](resp, fallback)
	}
	return decode[entities.Book](resp)
}

// notFound keeps the server's message but guarantees the canonical one
// when the body carries none.
func notFound[T any](resp *response) result.Result[T] {
	return failure[T](resp, "Book not found")
}

// encodeBook picks multipart when any asset carries an upload, JSON
// otherwise. Reference assets travel as plain fields in both encodings.
func encodeBook(fields map[string]string, assets map[string]*entities.Asset) (*payload, error) {
	var files []formFile
	for name, asset := range assets {
		if asset == nil {
			continue
		}
		if asset.HasUpload() {
			files = append(files, formFile{field: name, upload: asset.Upload})
			continue
		}
		fields[name] = asset.Ref
	}

	if len(files) > 0 {
		return multipartPayload(fields, files)
	}

	body := make(map[string]any, len(fields))
	for k, v := range fields {
		body[k] = v
	}
	if year, ok := fields["year"]; ok {
		if n, err := strconv.Atoi(year); err == nil {
			body["year"] = n
		}
	}
	return jsonPayload(body)
}

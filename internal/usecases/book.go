package usecases

import (
	"context"
	"strings"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/repository"
	"github.com/tulisify/tulisify/internal/result"
)

// GetBooksUseCase lists books matching a set of filters.
type GetBooksUseCase struct {
	books repository.BookRepository
}

// NewGetBooksUseCase creates a GetBooksUseCase over the given repository.
func NewGetBooksUseCase(books repository.BookRepository) *GetBooksUseCase {
	return &GetBooksUseCase{books: books}
}

// Execute lists books. A category filter in a legacy spelling is
// normalized; an unknown category yields a validation failure.
func (uc *GetBooksUseCase) Execute(ctx context.Context, filters entities.BookFilters) (res result.Result[[]entities.Book]) {
	defer result.Recover(&res, "Failed to fetch books")

	filters.Search = strings.TrimSpace(filters.Search)
	filters.Author = strings.TrimSpace(filters.Author)
	if filters.HasCategory() {
		c, ok := entities.ParseCategory(filters.Category)
		if !ok {
			return result.Invalid[[]entities.Book](MsgInvalidCategory)
		}
		filters.Category = string(c)
	} else {
		filters.Category = ""
	}

	return uc.books.FindAll(ctx, filters)
}

// GetBookUseCase fetches a single book by ID.
type GetBookUseCase struct {
	books repository.BookRepository
}

// NewGetBookUseCase creates a GetBookUseCase over the given repository.
func NewGetBookUseCase(books repository.BookRepository) *GetBookUseCase {
	return &GetBookUseCase{books: books}
}

// Execute fetches one book; a missing book is a not-found failure.
func (uc *GetBookUseCase) Execute(ctx context.Context, id string) (res result.Result[entities.Book]) {
	defer result.Recover(&res, "Failed to fetch book")

	if strings.TrimSpace(id) == "" {
		return result.Invalid[entities.Book](MsgBookIDRequired)
	}
	found := uc.books.FindByID(ctx, id)
	if found.IsFailure() {
		return result.Propagate[entities.Book](found)
	}
	if found.Value() == nil {
		return result.NotFound[entities.Book](MsgBookNotFound)
	}
	return result.Success(*found.Value())
}

// CountBooksUseCase reports how many books the library holds.
type CountBooksUseCase struct {
	books repository.BookRepository
}

// NewCountBooksUseCase creates a CountBooksUseCase over the given repository.
func NewCountBooksUseCase(books repository.BookRepository) *CountBooksUseCase {
	return &CountBooksUseCase{books: books}
}

func (uc *CountBooksUseCase) Execute(ctx context.Context) (res result.Result[int64]) {
	defer result.Recover(&res, "Failed to count books")
	return uc.books.Count(ctx)
}

// CreateBookUseCase validates and stores a new book.
type CreateBookUseCase struct {
	books repository.BookRepository
	clock Clock
}

// NewCreateBookUseCase creates a CreateBookUseCase. clock bounds the
// accepted publication year; nil means time.Now.
func NewCreateBookUseCase(books repository.BookRepository, clock Clock) *CreateBookUseCase {
	return &CreateBookUseCase{books: books, clock: clock}
}

func (uc *CreateBookUseCase) Execute(ctx context.Context, req entities.CreateBookRequest) (res result.Result[entities.Book]) {
	defer result.Recover(&res, "Failed to create book")

	if msg := validateNewBook(req, uc.clock.now()); msg != "" {
		return result.Invalid[entities.Book](msg)
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Description = strings.TrimSpace(req.Description)
	req.Category, _ = entities.ParseCategory(string(req.Category))

	return uc.books.Create(ctx, req)
}

// UpdateBookUseCase applies a partial update. The existence check runs
// before the mutation, and the mutation itself is conditional so a book
// deleted in between still reports "Book not found".
type UpdateBookUseCase struct {
	books repository.BookRepository
	clock Clock
}

// NewUpdateBookUseCase creates an UpdateBookUseCase. clock bounds the
// accepted publication year; nil means time.Now.
func NewUpdateBookUseCase(books repository.BookRepository, clock Clock) *UpdateBookUseCase {
	return &UpdateBookUseCase{books: books, clock: clock}
}

func (uc *UpdateBookUseCase) Execute(ctx context.Context, req entities.UpdateBookRequest) (res result.Result[entities.Book]) {
	defer result.Recover(&res, "Failed to update book")

	if msg := validateBookChanges(req, uc.clock.now()); msg != "" {
		return result.Invalid[entities.Book](msg)
	}

	existing := uc.books.FindByID(ctx, req.ID)
	if existing.IsFailure() {
		return result.Propagate[entities.Book](existing)
	}
	if existing.Value() == nil {
		return result.NotFound[entities.Book](MsgBookNotFound)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Author != nil {
		author := strings.TrimSpace(*req.Author)
		req.Author = &author
	}
	if req.Category != nil {
		c, _ := entities.ParseCategory(string(*req.Category))
		req.Category = &c
	}

	return uc.books.Update(ctx, req)
}

// DeleteBookUseCase removes a book and releases its files.
type DeleteBookUseCase struct {
	books repository.BookRepository
}

// NewDeleteBookUseCase creates a DeleteBookUseCase over the given repository.
func NewDeleteBookUseCase(books repository.BookRepository) *DeleteBookUseCase {
	return &DeleteBookUseCase{books: books}
}

func (uc *DeleteBookUseCase) Execute(ctx context.Context, id string) (res result.Result[struct{}]) {
	defer result.Recover(&res, "Failed to delete book")

	if strings.TrimSpace(id) == "" {
		return result.Invalid[struct{}](MsgBookIDRequired)
	}

	existing := uc.books.FindByID(ctx, id)
	if existing.IsFailure() {
		return result.Propagate[struct{}](existing)
	}
	if existing.Value() == nil {
		return result.NotFound[struct{}](MsgBookNotFound)
	}

	return uc.books.Delete(ctx, id)
}

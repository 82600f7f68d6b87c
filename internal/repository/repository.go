// Package repository defines the data-source contracts the use-cases depend
// on. Every method reports its outcome as a result.Result; implementations
// never return raw errors or panic on expected conditions.
//
// Two families of implementations exist:
//
//   - internal/api: HTTP adapters talking to the Tulisify API (client side)
//   - internal/database/books and internal/auth: GORM adapters (server side)
package repository

import (
	"context"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
)

// BookRepository is the book data source.
type BookRepository interface {
	FindAll(ctx context.Context, filters entities.BookFilters) result.Result[[]entities.Book]

	// FindByID succeeds with a nil book when the id does not exist.
	FindByID(ctx context.Context, id string) result.Result[*entities.Book]

	Create(ctx context.Context, req entities.CreateBookRequest) result.Result[entities.Book]

	// Update and Delete are conditional: they fail with result.KindNotFound
	// when the book is absent at the time of the mutation.
	Update(ctx context.Context, req entities.UpdateBookRequest) result.Result[entities.Book]
	Delete(ctx context.Context, id string) result.Result[struct{}]

	Count(ctx context.Context) result.Result[int64]
}

// AuthRepository is the authentication data source.
type AuthRepository interface {
	Login(ctx context.Context, req entities.LoginRequest) result.Result[entities.AuthResponse]
	Register(ctx context.Context, req entities.RegisterRequest) result.Result[entities.AuthResponse]

	// GetCurrentUser succeeds with a nil user when nobody is signed in.
	GetCurrentUser(ctx context.Context) result.Result[*entities.User]

	Logout(ctx context.Context) result.Result[struct{}]
}

// Package presenter holds UI state for the use-cases: loading flags,
// the last error message and the last loaded data. Presenters are safe for
// concurrent use; the CLI drives them sequentially, tests drive them
// concurrently.
package presenter

import (
	"context"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
)

type BooksFetcher interface {
	Execute(ctx context.Context, filters entities.BookFilters) result.Result[[]entities.Book]
}

type BookCreator interface {
	Execute(ctx context.Context, req entities.CreateBookRequest) result.Result[entities.Book]
}

type BookUpdater interface {
	Execute(ctx context.Context, req entities.UpdateBookRequest) result.Result[entities.Book]
}

type BookDeleter interface {
	Execute(ctx context.Context, id string) result.Result[struct{}]
}

type LoginExecutor interface {
	Execute(ctx context.Context, req entities.LoginRequest) result.Result[entities.AuthResponse]
}

type RegisterExecutor interface {
	Execute(ctx context.Context, req entities.RegisterRequest) result.Result[entities.AuthResponse]
}

type LogoutExecutor interface {
	Execute(ctx context.Context) result.Result[struct{}]
}

type CurrentUserExecutor interface {
	Execute(ctx context.Context) result.Result[*entities.User]
}

// Package container wires repositories into use-cases. It replaces a
// service locator: every dependency is a typed field, so missing wiring is
// a compile error rather than a runtime lookup failure.
package container

import (
	"github.com/tulisify/tulisify/internal/api"
	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/repository"
	"github.com/tulisify/tulisify/internal/tokenstore"
	"github.com/tulisify/tulisify/internal/usecases"
)

// Deps are the data sources a Container is built from.
type Deps struct {
	Books repository.BookRepository
	Auth  repository.AuthRepository

	// Clock pins "now" for year validation; nil means time.Now.
	Clock usecases.Clock
}

type Container struct {
	Books repository.BookRepository
	Auth  repository.AuthRepository

	Login       *usecases.LoginUseCase
	Register    *usecases.RegisterUseCase
	Logout      *usecases.LogoutUseCase
	CurrentUser *usecases.CurrentUserUseCase

	GetBooks   *usecases.GetBooksUseCase
	GetBook    *usecases.GetBookUseCase
	CountBooks *usecases.CountBooksUseCase
	CreateBook *usecases.CreateBookUseCase
	UpdateBook *usecases.UpdateBookUseCase
	DeleteBook *usecases.DeleteBookUseCase
}

// New builds every use-case over the given repositories.
func New(d Deps) *Container {
	return &Container{
		Books: d.Books,
		Auth:  d.Auth,

		Login:       usecases.NewLoginUseCase(d.Auth),
		Register:    usecases.NewRegisterUseCase(d.Auth),
		Logout:      usecases.NewLogoutUseCase(d.Auth),
		CurrentUser: usecases.NewCurrentUserUseCase(d.Auth),

		GetBooks:   usecases.NewGetBooksUseCase(d.Books),
		GetBook:    usecases.NewGetBookUseCase(d.Books),
		CountBooks: usecases.NewCountBooksUseCase(d.Books),
		CreateBook: usecases.NewCreateBookUseCase(d.Books, d.Clock),
		UpdateBook: usecases.NewUpdateBookUseCase(d.Books, d.Clock),
		DeleteBook: usecases.NewDeleteBookUseCase(d.Books),
	}
}

// NewRemote builds the client graph: HTTP repositories sharing one API
// client and token store.
func NewRemote(cfg config.Client, tokens tokenstore.Store) *Container {
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, tokens)
	return New(Deps{
		Books: api.NewBookAPIRepository(client),
		Auth:  api.NewAuthAPIRepository(client),
	})
}

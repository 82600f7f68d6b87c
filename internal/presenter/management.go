package presenter

import (
	"context"
	"sync"

	"github.com/tulisify/tulisify/internal/entities"
)

type ManagementState struct {
	Loading bool
	Error   string
}

// BookManagementPresenter runs the admin mutations.
type BookManagementPresenter struct {
	create BookCreator
	update BookUpdater
	remove BookDeleter

	mu    sync.Mutex
	state ManagementState
}

func NewBookManagementPresenter(create BookCreator, update BookUpdater, remove BookDeleter) *BookManagementPresenter {
	return &BookManagementPresenter{create: create, update: update, remove: remove}
}

// Create returns the new book, or nil with State().Error set.
func (p *BookManagementPresenter) Create(ctx context.Context, req entities.CreateBookRequest) *entities.Book {
	p.begin()
	res := p.create.Execute(ctx, req)
	if res.IsFailure() {
		p.finish(res.ErrorMessage())
		return nil
	}
	p.finish("")
	book := res.Value()
	return &book
}

func (p *BookManagementPresenter) Update(ctx context.Context, req entities.UpdateBookRequest) *entities.Book {
	p.begin()
	res := p.update.Execute(ctx, req)
	if res.IsFailure() {
		p.finish(res.ErrorMessage())
		return nil
	}
	p.finish("")
	book := res.Value()
	return &book
}

func (p *BookManagementPresenter) Delete(ctx context.Context, id string) bool {
	p.begin()
	res := p.remove.Execute(ctx, id)
	if res.IsFailure() {
		p.finish(res.ErrorMessage())
		return false
	}
	p.finish("")
	return true
}

func (p *BookManagementPresenter) State() ManagementState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *BookManagementPresenter) begin() {
	p.mu.Lock()
	p.state = ManagementState{Loading: true}
	p.mu.Unlock()
}

func (p *BookManagementPresenter) finish(errMsg string) {
	p.mu.Lock()
	p.state = ManagementState{Error: errMsg}
	p.mu.Unlock()
}

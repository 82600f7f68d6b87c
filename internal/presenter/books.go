package presenter

import (
	"context"
	"sync"

	"github.com/tulisify/tulisify/internal/entities"
)

type BooksState struct {
	Books   []entities.Book
	Loading bool
	Error   string
}

// BooksPresenter loads book lists. Each Fetch takes a sequence number and
// its result is applied only when no newer fetch has been applied, so a
// slow response to an old filter never overwrites a newer one.
type BooksPresenter struct {
	getBooks BooksFetcher

	mu      sync.Mutex
	state   BooksState
	issued  uint64
	applied uint64
}

func NewBooksPresenter(getBooks BooksFetcher) *BooksPresenter {
	return &BooksPresenter{getBooks: getBooks, state: BooksState{Books: []entities.Book{}}}
}

// Fetch runs the list use-case and returns the state after this fetch was
// applied or discarded.
func (p *BooksPresenter) Fetch(ctx context.Context, filters entities.BookFilters) BooksState {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.state.Loading = true
	p.state.Error = ""
	p.mu.Unlock()

	res := p.getBooks.Execute(ctx, filters)

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq > p.applied {
		p.applied = seq
		if res.IsSuccess() {
			p.state.Books = res.Value()
			p.state.Error = ""
		} else {
			p.state.Books = []entities.Book{}
			p.state.Error = res.ErrorMessage()
		}
	}
	p.state.Loading = p.applied < p.issued
	return p.snapshot()
}

func (p *BooksPresenter) State() BooksState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *BooksPresenter) snapshot() BooksState {
	s := p.state
	s.Books = append([]entities.Book(nil), p.state.Books...)
	return s
}

package usecases

import (
	"context"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
)

// fakeBookRepository records calls and replays canned results.
type fakeBookRepository struct {
	books map[string]entities.Book

	findAllCalls  int
	findByIDCalls int
	createCalls   int
	updateCalls   int
	deleteCalls   int
	countCalls    int

	lastFilters entities.BookFilters
	lastCreate  entities.CreateBookRequest
	lastUpdate  entities.UpdateBookRequest

	findByIDResult *result.Result[*entities.Book]
	createResult   *result.Result[entities.Book]
	updateResult   *result.Result[entities.Book]
	deleteResult   *result.Result[struct{}]
	panicOnCreate  bool
}

func newFakeBookRepository(books ...entities.Book) *fakeBookRepository {
	repo := &fakeBookRepository{books: make(map[string]entities.Book)}
	for _, b := range books {
		repo.books[b.ID] = b
	}
	return repo
}

func (f *fakeBookRepository) FindAll(_ context.Context, filters entities.BookFilters) result.Result[[]entities.Book] {
	f.findAllCalls++
	f.lastFilters = filters
	out := make([]entities.Book, 0, len(f.books))
	for _, b := range f.books {
		out = append(out, b)
	}
	return result.Success(out)
}

func (f *fakeBookRepository) FindByID(_ context.Context, id string) result.Result[*entities.Book] {
	f.findByIDCalls++
	if f.findByIDResult != nil {
		return *f.findByIDResult
	}
	b, ok := f.books[id]
	if !ok {
		return result.Success[*entities.Book](nil)
	}
	return result.Success(&b)
}

func (f *fakeBookRepository) Create(_ context.Context, req entities.CreateBookRequest) result.Result[entities.Book] {
	f.createCalls++
	f.lastCreate = req
	if f.panicOnCreate {
		panic("database exploded")
	}
	if f.createResult != nil {
		return *f.createResult
	}
	b := entities.Book{ID: "1", Title: req.Title, Author: req.Author, Year: req.Year, Category: req.Category}
	f.books[b.ID] = b
	return result.Success(b)
}

func (f *fakeBookRepository) Update(_ context.Context, req entities.UpdateBookRequest) result.Result[entities.Book] {
	f.updateCalls++
	f.lastUpdate = req
	if f.updateResult != nil {
		return *f.updateResult
	}
	b := f.books[req.ID]
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Year != nil {
		b.Year = *req.Year
	}
	f.books[req.ID] = b
	return result.Success(b)
}

func (f *fakeBookRepository) Delete(_ context.Context, id string) result.Result[struct{}] {
	f.deleteCalls++
	if f.deleteResult != nil {
		return *f.deleteResult
	}
	delete(f.books, id)
	return result.Success(struct{}{})
}

func (f *fakeBookRepository) Count(context.Context) result.Result[int64] {
	f.countCalls++
	return result.Success(int64(len(f.books)))
}

type fakeAuthRepository struct {
	loginCalls    int
	registerCalls int
	logoutCalls   int
	currentCalls  int

	lastLogin    entities.LoginRequest
	lastRegister entities.RegisterRequest

	loginResult *result.Result[entities.AuthResponse]
	current     *entities.User
}

func (f *fakeAuthRepository) Login(_ context.Context, req entities.LoginRequest) result.Result[entities.AuthResponse] {
	f.loginCalls++
	f.lastLogin = req
	if f.loginResult != nil {
		return *f.loginResult
	}
	return result.Success(entities.AuthResponse{
		User:  entities.User{ID: "u1", Email: req.Email, Role: entities.UserRoleUser},
		Token: "token",
	})
}

func (f *fakeAuthRepository) Register(_ context.Context, req entities.RegisterRequest) result.Result[entities.AuthResponse] {
	f.registerCalls++
	f.lastRegister = req
	return result.Success(entities.AuthResponse{
		User:  entities.User{ID: "u2", Email: req.Email, Role: entities.UserRoleUser},
		Token: "token",
	})
}

func (f *fakeAuthRepository) GetCurrentUser(context.Context) result.Result[*entities.User] {
	f.currentCalls++
	return result.Success(f.current)
}

func (f *fakeAuthRepository) Logout(context.Context) result.Result[struct{}] {
	f.logoutCalls++
	return result.Success(struct{}{})
}

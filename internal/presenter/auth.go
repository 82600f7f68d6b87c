package presenter

import (
	"context"
	"sync"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
)

type AuthState struct {
	User    *entities.User
	Loading bool
	Error   string
}

type AuthPresenter struct {
	login    LoginExecutor
	register RegisterExecutor
	logout   LogoutExecutor
	current  CurrentUserExecutor

	mu    sync.Mutex
	state AuthState
}

func NewAuthPresenter(login LoginExecutor, register RegisterExecutor, logout LogoutExecutor, current CurrentUserExecutor) *AuthPresenter {
	return &AuthPresenter{login: login, register: register, logout: logout, current: current}
}

// Login keeps the previous user on failure, like Register.
func (p *AuthPresenter) Login(ctx context.Context, req entities.LoginRequest) bool {
	p.setLoading()
	return p.finishAuth(p.login.Execute(ctx, req))
}

func (p *AuthPresenter) Register(ctx context.Context, req entities.RegisterRequest) bool {
	p.setLoading()
	return p.finishAuth(p.register.Execute(ctx, req))
}

// Logout always ends signed out. A failure to drop the stored token is
// reported in State().Error.
func (p *AuthPresenter) Logout(ctx context.Context) {
	res := p.logout.Execute(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = AuthState{}
	if res.IsFailure() {
		p.state.Error = res.ErrorMessage()
	}
}

// CheckAuth refreshes the signed-in user. Any failure means "nobody signed
// in" and is not surfaced as an error.
func (p *AuthPresenter) CheckAuth(ctx context.Context) *entities.User {
	p.setLoading()
	res := p.current.Execute(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = AuthState{}
	if res.IsSuccess() {
		p.state.User = res.Value()
	}
	return p.state.User
}

func (p *AuthPresenter) State() AuthState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *AuthPresenter) setLoading() {
	p.mu.Lock()
	p.state.Loading = true
	p.state.Error = ""
	p.mu.Unlock()
}

func (p *AuthPresenter) finishAuth(res result.Result[entities.AuthResponse]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if res.IsFailure() {
		p.state.Error = res.ErrorMessage()
		return false
	}
	user := res.Value().User
	p.state.User = &user
	p.state.Error = ""
	return true
}

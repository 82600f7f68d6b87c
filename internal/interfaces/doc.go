// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Repositories
//
// The use-cases in internal/usecases depend only on the contracts in
// internal/repository. Each has two implementations:
//
//   - BookRepository: internal/database/books (GORM) and internal/api (HTTP)
//   - AuthRepository: internal/auth (bcrypt + JWT) and internal/api (HTTP)
//
// Both report outcomes as result.Result values; the server maps failure
// kinds to HTTP statuses and the HTTP adapters map them back.
//
// ## Data Access Interfaces
//
//   - UserStore: user persistence for the auth service (internal/auth/service.go)
//   - AssetStore: upload storage for the book repository (internal/database/books/repository.go)
//   - ReferenceSource: stored paths books still use (internal/tasks/sweep.go)
//   - tokenstore.Store: client-side bearer token storage (internal/tokenstore/tokenstore.go)
//
// ## Storage Interfaces
//
//   - storage.Client: file provider contract (internal/storage/client.go)
//   - storage.DeleteScheduler: deferred asset removal (internal/storage/assets.go)
//
// # Adding a New Storage Provider
//
// To keep assets somewhere other than the local filesystem:
//
//  1. Create a package under internal/storage/providers/
//
//     type Provider struct { bucket string }
//
//     func (p *Provider) Upload(ctx context.Context, path string, content io.Reader) error
//     func (p *Provider) Download(ctx context.Context, path string) (io.ReadCloser, error)
//     ...
//
//     var _ storage.Client = (*Provider)(nil)
//
//  2. Pass it to storage.NewAssets in entrypoint.go
//
// # Adding a New Repository Backend
//
//  1. Implement repository.BookRepository and repository.AuthRepository
//
//  2. Add compile-time checks to checks.go
//
//  3. Build a container with container.New(container.Deps{...})
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces

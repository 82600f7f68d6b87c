package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/tulisify/tulisify/internal/api"
	"github.com/tulisify/tulisify/internal/auth"
	"github.com/tulisify/tulisify/internal/database/books"
	"github.com/tulisify/tulisify/internal/database/users"
	"github.com/tulisify/tulisify/internal/repository"
	"github.com/tulisify/tulisify/internal/storage"
	"github.com/tulisify/tulisify/internal/storage/providers/local"
	"github.com/tulisify/tulisify/internal/tasks"
	"github.com/tulisify/tulisify/internal/tokenstore"
)

// =============================================================================
// Repositories
// =============================================================================

// BookRepository implementations
var _ repository.BookRepository = (*books.Repository)(nil)
var _ repository.BookRepository = (*api.BookAPIRepository)(nil)

// AuthRepository implementations
var _ repository.AuthRepository = (*auth.LocalRepository)(nil)
var _ repository.AuthRepository = (*api.AuthAPIRepository)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ auth.UserStore = (*users.Repository)(nil)
var _ books.AssetStore = (*storage.Assets)(nil)
var _ tasks.ReferenceSource = (*books.Repository)(nil)
var _ tasks.ReferenceChecker = (*books.Repository)(nil)

// Token storage implementations
var _ tokenstore.Store = (*tokenstore.MemoryStore)(nil)
var _ tokenstore.Store = (*tokenstore.SQLStore)(nil)

// =============================================================================
// Storage
// =============================================================================

var _ storage.Client = (*local.Provider)(nil)
var _ storage.DeleteScheduler = (*tasks.Client)(nil)

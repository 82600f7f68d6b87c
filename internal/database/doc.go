// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── seed.go          # Demo users and books
//	├── books/           # Book CRUD returning result.Result values
//	└── users/           # Accounts, login failures and lockout
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./tulisify.db")
//
//	booksRepo := books.NewRepository(db.DB, assets)
//	usersRepo := users.NewRepository(db.DB)
//
//	res := booksRepo.FindAll(ctx, entities.BookFilters{Search: "tere"})
//
// # Interface Implementations
//
//   - books.Repository: implements repository.BookRepository and
//     tasks.ReferenceSource
//   - users.Repository: implements auth.UserStore
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in NewDatabase's AutoMigrate call
//  5. Add a compile-time check in internal/interfaces
package database

package config

// Default locations
const (
	// DefaultDatabasePath is the server's main database
	DefaultDatabasePath = "./tulisify.db"

	// DefaultStorageDir holds uploaded covers and PDFs
	DefaultStorageDir = "./uploads"

	// DefaultAPIBaseURL is where the CLI finds the API
	DefaultAPIBaseURL = "http://localhost:4000/api"

	// DefaultClientDBName lives under ~/.tulisify and keeps the bearer token
	DefaultClientDBName = "client.db"
)

// Package auth provides authentication and authorization for the API.
//
// Users sign in with email and password (bcrypt hashes) and receive an
// HS256 JWT that clients send back as a bearer token. Tokens are stateless:
// logout only drops the token on the client.
//
// # Configuration
//
//	JWT_SECRET=<random string>          # Generated per process if empty
//	AUTH_TOKEN_EXPIRY=720h              # Token lifetime (30 days default)
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_MAX_LOGIN_ATTEMPTS=5           # Failed logins before lockout
//	AUTH_LOCKOUT_DURATION=30m           # Lockout length
//	AUTH_RATE_LIMIT_PER_MINUTE=10       # Per-IP requests on login/register
//
// # Usage
//
//	tokens, _ := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
//	service := auth.NewService(users.NewRepository(db.DB), tokens, cfg.Auth)
//	mw := auth.NewMiddleware(service)
//	router.Use(mw.Authenticate())
//	admin := router.Group("/", mw.RequireRole(entities.UserRoleAdmin))
//
// Extract the user in handlers:
//
//	user := auth.GetUser(c) // nil when anonymous
package auth

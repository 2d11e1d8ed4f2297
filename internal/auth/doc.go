// Package auth protects the admin API.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), intended for local use
//   - "token": Admin requests carry "Authorization: Bearer <token>"; the token
//     is checked against the bcrypt hashes listed in AUTH_ADMIN_TOKEN_HASHES
//
// # Configuration
//
//	AUTH_MODE=token
//	AUTH_ADMIN_TOKEN_HASHES=<hash1>,<hash2>
//	AUTH_BCRYPT_COST=12
//
// Generate a token and its hash with:
//
//	qbank hash-token -generate
//
// # Usage
//
//	authMiddleware := auth.NewMiddleware(cfg.Auth, auditService)
//	admin := router.Group("/api/admin", authMiddleware.Handler())
package auth

package http

import (
	"context"
	"time"

	"github.com/mrlokans/qbank/internal/auth"
	"github.com/mrlokans/qbank/internal/importsession"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Importer ImportRunner
	Sessions importsession.Store
	Evictor  importsession.Evictor

	// Read models, each optional
	Runs      RunLister
	Taxonomy  TaxonomyBrowser
	Questions QuestionReader
	Audit     AuditReader

	// Health checks
	Database Pinger
	Store    StorePinger

	// Authentication for /api/admin; nil leaves the admin API open
	AuthMiddleware *auth.Middleware

	// Progress stream tuning
	PollInterval time.Duration
	Retention    time.Duration

	MaxUploadBytes int64
	CORSOrigins    []string
	EnableHSTS     bool

	// Application info
	Version string
}

// Pinger checks a synchronous dependency such as the database.
type Pinger interface {
	Ping() error
}

// StorePinger checks a dependency that takes a context, such as Redis.
type StorePinger interface {
	Ping(ctx context.Context) error
}

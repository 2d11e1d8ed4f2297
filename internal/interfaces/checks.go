package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/qbank/internal/audit"
	"github.com/mrlokans/qbank/internal/auth"
	"github.com/mrlokans/qbank/internal/database"
	"github.com/mrlokans/qbank/internal/database/questions"
	"github.com/mrlokans/qbank/internal/database/runs"
	"github.com/mrlokans/qbank/internal/database/taxonomy"
	"github.com/mrlokans/qbank/internal/http"
	"github.com/mrlokans/qbank/internal/importers"
	"github.com/mrlokans/qbank/internal/importsession"
	"github.com/mrlokans/qbank/internal/tasks"
	taxonomymatch "github.com/mrlokans/qbank/internal/taxonomy"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Taxonomy implementations
var _ importers.TaxonomyStore = (*taxonomy.Repository)(nil)
var _ taxonomymatch.Store = (*taxonomy.Repository)(nil)
var _ http.TaxonomyBrowser = (*taxonomy.Repository)(nil)

// Question implementations
var _ importers.QuestionWriter = (*questions.Repository)(nil)
var _ http.QuestionReader = (*questions.Repository)(nil)

// Import history implementations
var _ importers.RunRecorder = (*runs.Repository)(nil)
var _ http.RunLister = (*runs.Repository)(nil)

// Health checks
var _ http.Pinger = (*database.Database)(nil)
var _ http.StorePinger = (*importsession.RedisStore)(nil)

// =============================================================================
// Import Sessions
// =============================================================================

// Store implementations
var _ importsession.Store = (*importsession.MemoryStore)(nil)
var _ importsession.Store = (*importsession.RedisStore)(nil)
var _ importsession.Sweeper = (*importsession.MemoryStore)(nil)
var _ importsession.Sweeper = (*importsession.RedisStore)(nil)

// Evictor implementations
var _ importsession.Evictor = (*importsession.TimerEvictor)(nil)
var _ importsession.Evictor = (*tasks.SessionEvictor)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ http.ImportRunner = (*importers.Pipeline)(nil)

// Audit implementations
var _ importers.Auditor = (*audit.Service)(nil)
var _ importers.Archiver = (*audit.Archiver)(nil)
var _ auth.AuthRecorder = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.Enqueuer = (*tasks.Client)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

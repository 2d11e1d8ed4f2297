// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── taxonomy/        # Subjects and lectures
//	├── questions/       # Question bulk insert and lookups
//	├── runs/            # Import run history
//	└── audit/           # Audit events
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./qbank.db")
//
//	taxonomyRepo := taxonomy.NewRepository(db.DB)
//	questionsRepo := questions.NewRepository(db.DB)
//
//	subjects, err := taxonomyRepo.ListSubjects(ctx)
//	inserted, err := questionsRepo.BulkInsert(ctx, batch)
//
// # Interface Implementations
//
//   - taxonomy.Repository: implements importers.TaxonomyStore
//   - questions.Repository: implements importers.QuestionWriter
//   - runs.Repository: implements importers.RunRecorder
//   - audit.Repository: backs audit.Service
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check in internal/interfaces
package database

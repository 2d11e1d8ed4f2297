// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - importers.TaxonomyStore: list and create subjects and lectures (internal/importers/pipeline.go)
//   - importers.QuestionWriter: bulk question inserts (internal/importers/batch.go)
//   - importers.RunRecorder: import history (internal/importers/pipeline.go)
//   - http.TaxonomyBrowser, http.QuestionReader, http.RunLister: read models for the API
//
// ## Session Interfaces
//
//   - importsession.Store: live progress records, in memory or in Redis (internal/importsession/store.go)
//   - importsession.Sweeper: bulk removal of expired sessions
//   - importsession.Evictor: delayed removal of one completed session
//
// ## Audit Interfaces
//
//   - importers.Auditor, auth.AuthRecorder: audit trail writers (internal/audit/service.go)
//   - importers.Archiver: copies of uploaded workbooks (internal/audit/audit.go)
//
// # Adding a New Session Backend
//
//  1. Implement importsession.Store and importsession.Sweeper:
//
//     type EtcdStore struct { client *clientv3.Client }
//
//     func (s *EtcdStore) Create(ctx context.Context, session *entities.ImportSession) error
//     func (s *EtcdStore) Get(ctx context.Context, id string) (*entities.ImportSession, error)
//     func (s *EtcdStore) Update(ctx context.Context, id string, fn func(*entities.ImportSession) error) error
//     func (s *EtcdStore) Delete(ctx context.Context, id string) error
//     func (s *EtcdStore) Sweep(ctx context.Context, completedBefore, staleBefore time.Time) (int, error)
//
//     Update must apply fn atomically: concurrent updates of one session may
//     not lose writes.
//
//  2. Add a SESSION_STORE_BACKEND value and construct it in entrypoint.go
//
//  3. Add compile-time checks to checks.go
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces

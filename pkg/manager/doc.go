// Package manager is the orchestration layer. It owns the business
// rules that sit above raw storage: user accounts and authentication,
// projects with member roles, the folder tree with its reserved Config
// and Other destinations, the document upload pipeline (blob write,
// version append, and the parse of Config uploads into device records),
// and the cascades that keep devices, images, artifacts and topology
// state consistent when things are deleted.
//
// The HTTP layer translates the package's sentinel errors into status
// codes: ErrValidation (400), ErrForbidden (403), ErrTooLarge (413),
// plus storage.ErrNotFound (404) and storage.ErrConflict (409).
package manager

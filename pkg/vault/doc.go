// Package vault provides the content lifecycle core of the LocalVault
// backend: a polymorphic content model (files and inline text), the
// upload/download protocol against a bucket-per-user blob store, and the
// ownership rules gating every operation.
//
// It exposes a single Service interface that coordinates the metadata
// Repository and the BlobStore. Implementations of repositories (memory,
// Postgres) and blob stores (memory, filesystem, S3) live in subpackages;
// phone-number authentication and session tokens live in the auth
// subpackage.
//
// Consistency
//
// The two stores are coordinated best-effort, not transactionally. On file
// creation the blob write strictly precedes the metadata write, so metadata
// never references a blob that was never written; on deletion the blob
// delete precedes the metadata delete but does not block it. The two
// residual drift windows (orphaned blob after a failed metadata commit,
// leaked blob after a failed storage delete) are logged for operator
// reconciliation.
package vault

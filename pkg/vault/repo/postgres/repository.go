package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localvault/localvault/pkg/vault"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements vault.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) vault.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) vault.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "users") {
				return fmt.Errorf("user already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("record not found")
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// User operations

const userColumns = "id, phone_number, is_phone_verified, is_active, created_at, updated_at"

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*vault.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetUserByPhone(ctx context.Context, phoneNumber string) (*vault.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, phoneNumber))
}

func (r *Repository) UpsertVerifiedUser(ctx context.Context, phoneNumber string) (*vault.User, error) {
	query := `
		INSERT INTO users (phone_number, is_phone_verified, is_active)
		VALUES ($1, TRUE, TRUE)
		ON CONFLICT (phone_number) DO UPDATE SET
			is_phone_verified = TRUE,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING ` + userColumns

	user, err := r.scanUser(r.db.QueryRow(ctx, query, phoneNumber))
	if err != nil && !errors.Is(err, vault.ErrUserNotFound) {
		return nil, r.handlePostgresError("upsert user", err)
	}
	return user, err
}

func (r *Repository) scanUser(row pgx.Row) (*vault.User, error) {
	var user vault.User
	err := row.Scan(&user.ID, &user.PhoneNumber, &user.Verified, &user.Active,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vault.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Content operations

const contentColumns = `id, user_id, kind, title, tags, text_body,
	object_key, original_name, bucket, file_size, mime_type, created_at, updated_at`

func (r *Repository) CreateContent(ctx context.Context, content *vault.Content) error {
	query := `
		INSERT INTO contents (
			id, user_id, kind, title, tags, text_body,
			object_key, original_name, bucket, file_size, mime_type,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	var (
		textBody     *string
		objectKey    *string
		originalName *string
		bucket       *string
		fileSize     *int64
		mimeType     *string
	)
	switch content.Kind {
	case vault.KindText:
		textBody = &content.Text.Body
	case vault.KindFile:
		objectKey = &content.File.ObjectKey
		originalName = &content.File.OriginalName
		bucket = &content.File.Bucket
		fileSize = &content.File.Size
		mimeType = &content.File.MimeType
	}

	_, err := r.db.Exec(ctx, query,
		content.ID, content.OwnerID, content.Kind, content.Title, content.Tags,
		textBody, objectKey, originalName, bucket, fileSize, mimeType,
		content.CreatedAt, content.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*vault.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`

	content, err := scanContent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vault.ErrContentNotFound
		}
		return nil, err
	}
	return content, nil
}

// listFilter builds the WHERE clause shared by the page and count queries.
// $1 owner, $2 kind (nullable), $3 search term ('' disables).
const listFilter = `
	user_id = $1
	AND ($2::text IS NULL OR kind = $2)
	AND ($3 = ''
		OR title ILIKE '%' || $3 || '%'
		OR text_body ILIKE '%' || $3 || '%'
		OR original_name ILIKE '%' || $3 || '%')`

func (r *Repository) ListContent(ctx context.Context, params vault.ListContentParams) ([]*vault.Content, int64, error) {
	var kind *string
	if params.Kind != nil {
		k := string(*params.Kind)
		kind = &k
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM contents WHERE` + listFilter
	if err := r.db.QueryRow(ctx, countQuery, params.OwnerID, kind, params.Search).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count content", err)
	}

	query := `SELECT ` + contentColumns + ` FROM contents WHERE` + listFilter + `
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.db.Query(ctx, query, params.OwnerID, kind, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	var contents []*vault.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, 0, err
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return contents, total, nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return vault.ErrContentNotFound
	}
	return nil
}

func (r *Repository) ContentStats(ctx context.Context, ownerID int64) (*vault.StatsSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE kind = 'text'),
			COUNT(*) FILTER (WHERE kind = 'file'),
			COALESCE(SUM(file_size) FILTER (WHERE kind = 'file'), 0)
		FROM contents WHERE user_id = $1`

	var stats vault.StatsSummary
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&stats.TotalCount, &stats.TextCount, &stats.FileCount, &stats.TotalFileBytes)
	if err != nil {
		return nil, r.handlePostgresError("content stats", err)
	}
	return &stats, nil
}

func scanContent(row pgx.Row) (*vault.Content, error) {
	var (
		content      vault.Content
		textBody     *string
		objectKey    *string
		originalName *string
		bucket       *string
		fileSize     *int64
		mimeType     *string
	)

	err := row.Scan(&content.ID, &content.OwnerID, &content.Kind, &content.Title,
		&content.Tags, &textBody, &objectKey, &originalName, &bucket,
		&fileSize, &mimeType, &content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		return nil, err
	}

	switch content.Kind {
	case vault.KindText:
		if textBody != nil {
			content.Text = &vault.TextPayload{Body: *textBody}
		}
	case vault.KindFile:
		if objectKey != nil {
			content.File = &vault.FilePayload{
				ObjectKey:    *objectKey,
				OriginalName: deref(originalName),
				Bucket:       deref(bucket),
				MimeType:     deref(mimeType),
			}
			if fileSize != nil {
				content.File.Size = *fileSize
			}
		}
	}

	return &content, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

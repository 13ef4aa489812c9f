package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"llm-relay/api/internal/content"
)

var ErrNotFound = sql.ErrNoRows

type DocumentRow struct {
	URL       string
	MediaType string
	Text      string
	CreatedAt time.Time
}

// DocumentRepo persists extracted document text keyed by URL.
type DocumentRepo struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewDocumentRepo(db *sql.DB, maxAge time.Duration) *DocumentRepo {
	return &DocumentRepo{DB: db, MaxAge: maxAge}
}

// Open connects through the pgx stdlib driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (r *DocumentRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists document_cache (
	url        text primary key,
	media_type text not null,
	body       text not null,
	created_at timestamptz not null default now()
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// Find returns the stored row for url. If maxAge > 0 and the row is older,
// it returns ErrNotFound so the caller fetches the document again.
func (r *DocumentRepo) Find(ctx context.Context, url string, maxAge time.Duration) (DocumentRow, error) {
	const q = `select url, media_type, body, created_at from document_cache where url = $1`
	var row DocumentRow
	if err := r.DB.QueryRowContext(ctx, q, url).Scan(&row.URL, &row.MediaType, &row.Text, &row.CreatedAt); err != nil {
		return DocumentRow{}, err
	}
	if maxAge > 0 && time.Since(row.CreatedAt) > maxAge {
		return DocumentRow{}, ErrNotFound
	}
	return row, nil
}

// Upsert stores or replaces the row. PK: url.
func (r *DocumentRepo) Upsert(ctx context.Context, row DocumentRow) error {
	const q = `
insert into document_cache(url, media_type, body)
values ($1, $2, $3)
on conflict (url)
do update set media_type = excluded.media_type, body = excluded.body, created_at = now()`
	_, err := r.DB.ExecContext(ctx, q, row.URL, row.MediaType, row.Text)
	return err
}

func (r *DocumentRepo) FindText(ctx context.Context, url string) (content.Text, bool, error) {
	row, err := r.Find(ctx, url, r.MaxAge)
	if errors.Is(err, ErrNotFound) {
		return content.Text{}, false, nil
	}
	if err != nil {
		return content.Text{}, false, err
	}
	return content.Text{Body: row.Text, MediaType: row.MediaType}, true, nil
}

func (r *DocumentRepo) SaveText(ctx context.Context, url string, t content.Text) error {
	return r.Upsert(ctx, DocumentRow{URL: url, MediaType: t.MediaType, Text: t.Body})
}

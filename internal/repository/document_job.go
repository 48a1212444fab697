package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

const documentJobsTable = "document_jobs"

var documentJobsDDL = []string{
	`CREATE TABLE IF NOT EXISTS document_jobs (
		id TEXT PRIMARY KEY,
		source_url TEXT NOT NULL DEFAULT '',
		local_path TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		method TEXT NOT NULL DEFAULT '',
		lines INTEGER NOT NULL DEFAULT 0,
		blocks INTEGER NOT NULL DEFAULT 0,
		records INTEGER NOT NULL DEFAULT 0,
		rejected INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_document_jobs_hash ON document_jobs(content_hash, status);`,
}

var documentJobColumns = []string{
	"id", "source_url", "local_path", "content_hash", "status", "method",
	"lines", "blocks", "records", "rejected", "error_message", "started_at", "finished_at",
}

// DocumentJobRepository is the per-document processing ledger.
type DocumentJobRepository interface {
	Create(ctx context.Context, sourceURL, localPath, contentHash string) (*entity.DocumentJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	FinishText(ctx context.Context, id uuid.UUID, method string, lines int) error
	FinishParse(ctx context.Context, id uuid.UUID, blocks, records, rejected int) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.DocumentJob, error)
	// FindParsedByHash returns common.ErrNotFound when no PARSED job has this content hash.
	FindParsedByHash(ctx context.Context, contentHash string) (*entity.DocumentJob, error)
	List(ctx context.Context, limit int) ([]*entity.DocumentJob, error)
}

type documentJobRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	log *slog.Logger
}

// NewDocumentJobRepository migrates the ledger table and returns the repository.
func NewDocumentJobRepository(ctx context.Context, db *sql.DB, log *slog.Logger) (DocumentJobRepository, error) {
	if log == nil {
		log = slog.Default()
	}
	for _, stmt := range documentJobsDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, common.WrapError(common.ErrDatabase, "migrate document_jobs: "+err.Error())
		}
	}
	return &documentJobRepo{db: db, b: entsql.Dialect(dialect.SQLite), log: log}, nil
}

func (r *documentJobRepo) Create(ctx context.Context, sourceURL, localPath, contentHash string) (*entity.DocumentJob, error) {
	job := &entity.DocumentJob{
		ID:          uuid.New(),
		SourceURL:   sourceURL,
		LocalPath:   localPath,
		ContentHash: contentHash,
		Status:      string(constants.JobStatusQueued),
		StartedAt:   time.Now().UTC(),
	}
	q, args := r.b.Insert(documentJobsTable).
		Columns("id", "source_url", "local_path", "content_hash", "status", "started_at").
		Values(job.ID.String(), sourceURL, localPath, contentHash, job.Status, formatTime(job.StartedAt)).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		r.log.Error("document_job create failed", "source", sourceURL, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	r.log.Debug("document_job created", "job_id", job.ID, "source", sourceURL)
	return job, nil
}

func (r *documentJobRepo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]any{"status": string(constants.JobStatusRunning)})
}

func (r *documentJobRepo) FinishText(ctx context.Context, id uuid.UUID, method string, lines int) error {
	return r.update(ctx, id, map[string]any{
		"status": string(constants.JobStatusTextOK),
		"method": method,
		"lines":  lines,
	})
}

func (r *documentJobRepo) FinishParse(ctx context.Context, id uuid.UUID, blocks, records, rejected int) error {
	err := r.update(ctx, id, map[string]any{
		"status":      string(constants.JobStatusParsed),
		"blocks":      blocks,
		"records":     records,
		"rejected":    rejected,
		"finished_at": formatTime(time.Now().UTC()),
	})
	if err == nil {
		r.log.Info("document_job finished (PARSED)", "job_id", id, "records", records, "rejected", rejected)
	}
	return err
}

func (r *documentJobRepo) Fail(ctx context.Context, id uuid.UUID, message string) error {
	err := r.update(ctx, id, map[string]any{
		"status":        string(constants.JobStatusFailed),
		"error_message": message,
		"finished_at":   formatTime(time.Now().UTC()),
	})
	if err == nil {
		r.log.Warn("document_job finished (FAILED)", "job_id", id, "error", message)
	}
	return err
}

func (r *documentJobRepo) update(ctx context.Context, id uuid.UUID, set map[string]any) error {
	u := r.b.Update(documentJobsTable)
	for _, col := range documentJobColumns {
		if v, ok := set[col]; ok {
			u.Set(col, v)
		}
	}
	q, args := u.Where(entsql.EQ("id", id.String())).Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		r.log.Error("document_job update failed", "job_id", id, "err", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.WrapError(common.ErrNotFound, "document job "+id.String())
	}
	return nil
}

func (r *documentJobRepo) Get(ctx context.Context, id uuid.UUID) (*entity.DocumentJob, error) {
	q, args := r.selectJobs().Where(entsql.EQ("id", id.String())).Query()
	return r.one(ctx, q, args)
}

func (r *documentJobRepo) FindParsedByHash(ctx context.Context, contentHash string) (*entity.DocumentJob, error) {
	q, args := r.selectJobs().
		Where(entsql.And(
			entsql.EQ("content_hash", contentHash),
			entsql.EQ("status", string(constants.JobStatusParsed)),
		)).
		OrderBy(entsql.Desc("started_at")).
		Limit(1).
		Query()
	return r.one(ctx, q, args)
}

func (r *documentJobRepo) List(ctx context.Context, limit int) ([]*entity.DocumentJob, error) {
	if limit <= 0 {
		limit = 100
	}
	q, args := r.selectJobs().OrderBy(entsql.Desc("started_at")).Limit(limit).Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer rows.Close()
	var out []*entity.DocumentJob
	for rows.Next() {
		job, err := scanDocumentJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *documentJobRepo) selectJobs() *entsql.Selector {
	return r.b.Select(documentJobColumns...).From(r.b.Table(documentJobsTable))
}

func (r *documentJobRepo) one(ctx context.Context, q string, args []any) (*entity.DocumentJob, error) {
	job, err := scanDocumentJob(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return job, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentJob(row rowScanner) (*entity.DocumentJob, error) {
	var (
		job              entity.DocumentJob
		id, started      string
		errMsg, finished sql.NullString
	)
	if err := row.Scan(&id, &job.SourceURL, &job.LocalPath, &job.ContentHash, &job.Status, &job.Method,
		&job.Lines, &job.Blocks, &job.Records, &job.Rejected, &errMsg, &started, &finished); err != nil {
		return nil, err
	}
	job.ID, _ = uuid.Parse(id)
	job.StartedAt = parseTime(started)
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if finished.Valid {
		t := parseTime(finished.String)
		job.FinishedAt = &t
	}
	return &job, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"hiring-agents/internal/contract"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, dsn string, log *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrateUp(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// migrateUp applies embedded migrations. The pgx driver holds an advisory
// lock for the duration, so concurrent services starting together are safe.
func migrateUp(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	dbInstance, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("create migrate db instance: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", dbInstance)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	migrateErr := m.Up()
	version, dirty, versionErr := m.Version()
	fields := []any{}
	if versionErr == nil {
		fields = append(fields, "version", version, "dirty", dirty)
	} else if !errors.Is(versionErr, migrate.ErrNilVersion) {
		log.WarnContext(ctx, "failed to fetch migration version", "err", versionErr)
	}

	if migrateErr != nil {
		if !errors.Is(migrateErr, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", migrateErr)
		}
		log.InfoContext(ctx, "no migrations to apply", fields...)
		return nil
	}
	log.InfoContext(ctx, "db is migrated", fields...)
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const candidateColumns = `id, uuid, name, email, password_hash, resume_text, resume_summary,
	resume_object_key, resume_links, conversation_text, score, analysis, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var (
		c     Candidate
		score sql.NullInt64
		links []string
	)
	err := row.Scan(&c.ID, &c.UUID, &c.Name, &c.Email, &c.PasswordHash, &c.ResumeText, &c.ResumeSummary,
		&c.ResumeObjectKey, pq.Array(&links), &c.ConversationText, &score, &c.Analysis, &c.Status,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Candidate{}, err
	}
	if score.Valid {
		v := int(score.Int64)
		c.Score = &v
	}
	c.ResumeLinks = links
	return c, nil
}

func (s *PostgresStore) CreateCandidate(ctx context.Context, nc NewCandidate) (Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO candidates(uuid, name, email, password_hash, resume_text, resume_object_key, resume_links, status)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+candidateColumns,
		uuid.New(), nc.Name, strings.ToLower(strings.TrimSpace(nc.Email)), nc.PasswordHash, nc.ResumeText,
		nc.ResumeObjectKey, pq.Array(pqStringArray(nc.ResumeLinks)), StatusRegistered)
	c, err := scanCandidate(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Candidate{}, ErrEmailTaken
		}
		return Candidate{}, fmt.Errorf("insert candidate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) GetCandidate(ctx context.Context, id int64) (Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id=$1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, ErrCandidateNotFound
		}
		return Candidate{}, fmt.Errorf("failed to get candidate %d: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) GetCandidateByEmail(ctx context.Context, email string) (Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE email=$1`,
		strings.ToLower(strings.TrimSpace(email)))
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, ErrCandidateNotFound
		}
		return Candidate{}, fmt.Errorf("failed to get candidate by email: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCandidates(ctx context.Context, statuses []CandidateStatus) ([]Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	query += ` ORDER BY id`
	return s.queryCandidates(ctx, query, args...)
}

func (s *PostgresStore) ListPendingScores(ctx context.Context, limit int) ([]Candidate, error) {
	return s.queryCandidates(ctx, `
		SELECT `+candidateColumns+` FROM candidates
		WHERE status = $1 AND score IS NULL AND conversation_text <> ''
		ORDER BY updated_at
		LIMIT $2`, StatusInterviewed, limit)
}

func (s *PostgresStore) queryCandidates(ctx context.Context, query string, args ...any) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveSummary(ctx context.Context, id int64, summary string) error {
	return s.exec(ctx, `UPDATE candidates SET resume_summary=$1, status=$2, updated_at=now() WHERE id=$3`,
		summary, StatusSummarized, id)
}

func (s *PostgresStore) SaveConversation(ctx context.Context, id int64, conversation string) error {
	return s.exec(ctx, `
		UPDATE candidates
		SET conversation_text=$1, status=$2, score=NULL, analysis='', updated_at=now()
		WHERE id=$3`,
		conversation, StatusInterviewed, id)
}

func (s *PostgresStore) SaveScore(ctx context.Context, id int64, rec contract.ScoreRecord) error {
	return s.exec(ctx, `UPDATE candidates SET score=$1, analysis=$2, status=$3, updated_at=now() WHERE id=$4`,
		rec.Score(), rec.Analysis(), StatusScored, id)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status CandidateStatus) error {
	return s.exec(ctx, `UPDATE candidates SET status=$1, updated_at=now() WHERE id=$2`, status, id)
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func statusStrings(statuses []CandidateStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func pqStringArray(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return items
}

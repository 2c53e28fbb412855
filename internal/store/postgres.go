package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5. Jobs and users
// are stored as JSONB documents, with the columns used for filtering lifted
// out alongside.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Seed inserts users and jobs that do not exist yet. Existing rows are left untouched.
func (s *PostgresStore) Seed(ctx context.Context, jobs []models.Job, users []models.User) (int, error) {
	inserted := 0
	for _, u := range users {
		doc, err := json.Marshal(u)
		if err != nil {
			return inserted, fmt.Errorf("encode user %s: %w", u.ID, err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO users (id, name, role, doc) VALUES ($1, $2, $3, $4)`,
			u.ID, u.Name, string(u.Role), doc)
		switch {
		case isDuplicateKeyError(err):
		case err != nil:
			return inserted, fmt.Errorf("seed user %s: %w", u.ID, err)
		default:
			inserted++
		}
	}
	for _, j := range jobs {
		doc, err := json.Marshal(j)
		if err != nil {
			return inserted, fmt.Errorf("encode job %s: %w", j.ID, err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO jobs (id, status, assigned_to, reported_at, doc) VALUES ($1, $2, $3, $4, $5)`,
			j.ID, string(j.Status), nullable(j.AssignedTo), j.ReportedAt, doc)
		switch {
		case isDuplicateKeyError(err):
		case err != nil:
			return inserted, fmt.Errorf("seed job %s: %w", j.ID, err)
		default:
			inserted++
		}
	}
	return inserted, nil
}

// --- Jobs ---

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, error) {
	query := `SELECT doc FROM jobs WHERE ($1 = '' OR status = $1) AND ($2 = '' OR assigned_to = $2)
		 ORDER BY reported_at DESC, id ASC`
	rows, err := s.pool.Query(ctx, query, string(filter.Status), filter.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		var j models.Job
		if err := json.Unmarshal(doc, &j); err != nil {
			return nil, fmt.Errorf("decode job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM jobs WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	var j models.Job
	if err := json.Unmarshal(doc, &j); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, id string, opts ...JobUpdateOption) (*models.Job, error) {
	return s.modifyJob(ctx, id, func(j *models.Job, now time.Time) error {
		return applyUpdate(j, now, opts)
	})
}

func (s *PostgresStore) AppendJobLog(ctx context.Context, id string, event string) (*models.Job, error) {
	return s.modifyJob(ctx, id, func(j *models.Job, now time.Time) error {
		j.Log = append(j.Log, models.LogEntry{Event: event, Timestamp: now})
		return nil
	})
}

// modifyJob reads the job under a row lock, applies fn and writes it back.
func (s *PostgresStore) modifyJob(ctx context.Context, id string, fn func(*models.Job, time.Time) error) (*models.Job, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM jobs WHERE id = $1 FOR UPDATE`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock job: %w", err)
	}

	var j models.Job
	if err := json.Unmarshal(doc, &j); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if err := fn(&j, s.now().UTC().Truncate(time.Microsecond)); err != nil {
		return nil, err
	}

	doc, err = json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE jobs SET status = $2, assigned_to = $3, doc = $4, updated_at = NOW() WHERE id = $1`,
		id, string(j.Status), nullable(j.AssignedTo), doc)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &j, nil
}

// --- Users ---

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		var u models.User
		if err := json.Unmarshal(doc, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	var u models.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*PostgresStore)(nil)

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/registration"
)

// PostgresStore persists members and candidates in PostgreSQL. Upserts rely on
// the unique email column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *PostgresStore) Close(context.Context) error    { return s.db.Close() }

const memberColumns = `id, name, email, mobile, roll_number, department, year, interests,
	experience, expectations, referral, registration_id, email_sent, email_sent_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*registration.Member, error) {
	var (
		m             registration.Member
		interestsJSON []byte
		emailSentAt   sql.NullTime
	)
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Mobile, &m.RollNumber, &m.Department, &m.Year,
		&interestsJSON, &m.Experience, &m.Expectations, &m.Referral, &m.RegistrationID,
		&m.EmailSent, &emailSentAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(interestsJSON) > 0 {
		if err := json.Unmarshal(interestsJSON, &m.Interests); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interests: %w", err)
		}
	}
	if emailSentAt.Valid {
		at := emailSentAt.Time
		m.EmailSentAt = &at
	}
	return &m, nil
}

func (s *PostgresStore) findMember(ctx context.Context, where string, arg any) (*registration.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM registrations WHERE ` + where + ` LIMIT 1`
	m, err := scanMember(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, fmt.Errorf("query registration: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) FindMemberByEmail(ctx context.Context, email string) (*registration.Member, error) {
	return s.findMember(ctx, "email = $1", email)
}

func (s *PostgresStore) FindMemberByMobile(ctx context.Context, mobile string) (*registration.Member, error) {
	return s.findMember(ctx, "mobile = $1", mobile)
}

const upsertMemberSQL = `
	INSERT INTO registrations (id, name, email, mobile, roll_number, department, year, interests,
		experience, expectations, referral, registration_id, email_sent, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13, $14)
	ON CONFLICT (email) DO UPDATE SET
		name = EXCLUDED.name,
		mobile = EXCLUDED.mobile,
		roll_number = EXCLUDED.roll_number,
		department = EXCLUDED.department,
		year = EXCLUDED.year,
		interests = EXCLUDED.interests,
		experience = EXCLUDED.experience,
		expectations = EXCLUDED.expectations,
		referral = EXCLUDED.referral,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + memberColumns

func (s *PostgresStore) UpsertMember(ctx context.Context, m *registration.Member) (*registration.Member, error) {
	interests := m.Interests
	if interests == nil {
		interests = []string{}
	}
	interestsJSON, err := json.Marshal(interests)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal interests: %w", err)
	}

	row := s.db.QueryRowContext(ctx, upsertMemberSQL,
		uuid.New(), m.Name, m.Email, m.Mobile, m.RollNumber, m.Department, m.Year, interestsJSON,
		m.Experience, m.Expectations, m.Referral, m.RegistrationID, m.CreatedAt, m.UpdatedAt)

	saved, err := scanMember(row)
	if err != nil {
		return nil, fmt.Errorf("upsert registration: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) MarkEmailSent(ctx context.Context, email string, at time.Time) error {
	const q = `UPDATE registrations SET email_sent = TRUE, email_sent_at = $2, updated_at = $2 WHERE email = $1`
	res, err := s.db.ExecContext(ctx, q, email, at)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	if n == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context) ([]*registration.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM registrations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var members []*registration.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

const candidateColumns = `id, name, email, mobile, passing_out_year, problem_unlocked,
	submitted_solution, source, created_at, updated_at`

func scanCandidate(row rowScanner) (*recruitment.Candidate, error) {
	var c recruitment.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Mobile, &c.PassingOutYear, &c.ProblemUnlocked,
		&c.SubmittedSolution, &c.Source, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const upsertCandidateSQL = `
	INSERT INTO recruitment (id, name, email, mobile, passing_out_year, problem_unlocked,
		submitted_solution, source, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8, $9)
	ON CONFLICT (email) DO UPDATE SET
		name = EXCLUDED.name,
		mobile = EXCLUDED.mobile,
		passing_out_year = EXCLUDED.passing_out_year,
		problem_unlocked = COALESCE(NULLIF(EXCLUDED.problem_unlocked, ''), recruitment.problem_unlocked),
		source = EXCLUDED.source,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + candidateColumns

func (s *PostgresStore) UpsertCandidate(ctx context.Context, c *recruitment.Candidate) (*recruitment.Candidate, error) {
	row := s.db.QueryRowContext(ctx, upsertCandidateSQL,
		uuid.New(), c.Name, c.Email, c.Mobile, c.PassingOutYear, c.ProblemUnlocked,
		c.Source, c.CreatedAt, c.UpdatedAt)

	saved, err := scanCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("upsert candidate: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) FindCandidateByEmail(ctx context.Context, email string) (*recruitment.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM recruitment WHERE email = $1`, email)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recruitment.ErrNotFound
		}
		return nil, fmt.Errorf("query candidate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCandidates(ctx context.Context) ([]*recruitment.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+candidateColumns+` FROM recruitment ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*recruitment.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

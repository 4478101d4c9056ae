package candidateinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresCandidateRepository struct {
	db *sqlx.DB
}

func NewPostgresCandidateRepository(db *sqlx.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

type candidateRow struct {
	ID               string          `db:"id"`
	Name             string          `db:"name"`
	Email            sql.NullString  `db:"email"`
	Phone            sql.NullString  `db:"phone"`
	Location         sql.NullString  `db:"location"`
	Skills           pq.StringArray  `db:"skills"`
	ExperienceYears  float64         `db:"experience_years"`
	Status           string          `db:"status"`
	ResumeParse      []byte          `db:"resume_parse"`
	ResumeJobID      sql.NullString  `db:"resume_job_id"`
	Flags            []byte          `db:"flags"`
	CurrentCTC       sql.NullFloat64 `db:"current_ctc"`
	ExpectedCTC      sql.NullFloat64 `db:"expected_ctc"`
	NoticePeriodDays sql.NullInt32   `db:"notice_period_days"`
	Source           sql.NullString  `db:"source"`
	Remarks          sql.NullString  `db:"remarks"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

const candidateColumns = `
	id, name, email, phone, location, skills, experience_years, status,
	resume_parse, resume_job_id, flags, current_ctc, expected_ctc,
	notice_period_days, source, remarks, created_at, updated_at`

func (r candidateRow) toDomain() (*candidate.Candidate, error) {
	status, _ := candidate.ParseStatus(r.Status)
	c := &candidate.Candidate{
		ID:              kernel.CandidateID(r.ID),
		Name:            r.Name,
		Email:           kernel.Email(r.Email.String),
		Phone:           kernel.Phone(r.Phone.String),
		Location:        r.Location.String,
		Skills:          []string(r.Skills),
		ExperienceYears: r.ExperienceYears,
		Status:          status,
		ResumeJobID:     kernel.ResumeJobID(r.ResumeJobID.String),
		Flags:           []candidate.Flag{},
		Source:          r.Source.String,
		Remarks:         r.Remarks.String,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if r.CurrentCTC.Valid {
		c.CurrentCTC = &r.CurrentCTC.Float64
	}
	if r.ExpectedCTC.Valid {
		c.ExpectedCTC = &r.ExpectedCTC.Float64
	}
	if r.NoticePeriodDays.Valid {
		days := int(r.NoticePeriodDays.Int32)
		c.NoticePeriodDays = &days
	}
	if len(r.Flags) > 0 {
		if err := json.Unmarshal(r.Flags, &c.Flags); err != nil {
			return nil, fmt.Errorf("unmarshal flags for candidate %s: %w", r.ID, err)
		}
	}
	if len(r.ResumeParse) > 0 {
		var parsed resume.ParsedResume
		if err := json.Unmarshal(r.ResumeParse, &parsed); err != nil {
			return nil, fmt.Errorf("unmarshal resume for candidate %s: %w", r.ID, err)
		}
		c.ResumeParse = &parsed
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func flagsArg(flags []candidate.Flag) ([]byte, error) {
	if flags == nil {
		flags = []candidate.Flag{}
	}
	return json.Marshal(flags)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Create creates a new candidate
func (r *PostgresCandidateRepository) Create(ctx context.Context, c *candidate.Candidate) error {
	flags, err := flagsArg(c.Flags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO candidates (` + candidateColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Name, nullString(string(c.Email)), nullString(string(c.Phone)),
		nullString(c.Location), pq.Array(c.Skills), c.ExperienceYears, string(c.Status),
		c.ResumeParse, nullString(string(c.ResumeJobID)), flags, c.CurrentCTC, c.ExpectedCTC,
		c.NoticePeriodDays, nullString(c.Source), nullString(c.Remarks), c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return candidate.ErrEmailAlreadyExists().WithDetail("email", string(c.Email))
	}
	if err != nil {
		return fmt.Errorf("create candidate %s: %w", c.ID, err)
	}
	return nil
}

// Update updates an existing candidate
func (r *PostgresCandidateRepository) Update(ctx context.Context, c *candidate.Candidate) error {
	flags, err := flagsArg(c.Flags)
	if err != nil {
		return err
	}

	query := `
		UPDATE candidates SET
			name = $2,
			email = $3,
			phone = $4,
			location = $5,
			skills = $6,
			experience_years = $7,
			status = $8,
			resume_parse = $9,
			resume_job_id = $10,
			flags = $11,
			current_ctc = $12,
			expected_ctc = $13,
			notice_period_days = $14,
			source = $15,
			remarks = $16,
			updated_at = $17
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, nullString(string(c.Email)), nullString(string(c.Phone)),
		nullString(c.Location), pq.Array(c.Skills), c.ExperienceYears, string(c.Status),
		c.ResumeParse, nullString(string(c.ResumeJobID)), flags, c.CurrentCTC, c.ExpectedCTC,
		c.NoticePeriodDays, nullString(c.Source), nullString(c.Remarks), c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return candidate.ErrEmailAlreadyExists().WithDetail("email", string(c.Email))
	}
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", c.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", c.ID, err)
	}
	if rows == 0 {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", c.ID)
	}
	return nil
}

func (r *PostgresCandidateRepository) get(ctx context.Context, where string, arg any) (*candidate.Candidate, error) {
	var row candidateRow
	err := r.db.GetContext(ctx, &row, `SELECT `+candidateColumns+` FROM candidates WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, candidate.ErrCandidateNotFound().WithDetail("lookup", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return row.toDomain()
}

// GetByID retrieves a candidate by ID
func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id kernel.CandidateID) (*candidate.Candidate, error) {
	return r.get(ctx, "id = $1", string(id))
}

// GetByEmail retrieves a candidate by email, ignoring case
func (r *PostgresCandidateRepository) GetByEmail(ctx context.Context, email kernel.Email) (*candidate.Candidate, error) {
	return r.get(ctx, "lower(email) = lower($1)", string(email))
}

// Delete deletes a candidate by ID
func (r *PostgresCandidateRepository) Delete(ctx context.Context, id kernel.CandidateID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete candidate %s: %w", id, err)
	}
	if rows == 0 {
		return candidate.ErrCandidateNotFound().WithDetail("candidate_id", id)
	}
	return nil
}

// List retrieves candidates newest first
func (r *PostgresCandidateRepository) List(ctx context.Context, filter candidate.ListCandidatesRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[candidate.Candidate], error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		status, _ := candidate.ParseStatus(string(filter.Status))
		args = append(args, string(status))
		where = append(where, fmt.Sprintf("upper(status) = $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		where = append(where, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if filter.Skill != "" {
		args = append(args, strings.ToLower(filter.Skill))
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(skills) s WHERE lower(s) = $%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM candidates `+whereClause, args...); err != nil {
		return nil, fmt.Errorf("count candidates: %w", err)
	}

	p := pagination.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM candidates %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		candidateColumns, whereClause, len(args)+1, len(args)+2)

	var rows []candidateRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, p.PageSize, p.Offset())...); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	items := make([]candidate.Candidate, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return kernel.NewPaginated(items, p, total), nil
}

func (r *PostgresCandidateRepository) CountByStatus(ctx context.Context) (map[candidate.CandidateStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT upper(status) AS status, COUNT(*) AS count FROM candidates GROUP BY upper(status)`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count candidates by status: %w", err)
	}

	counts := make(map[candidate.CandidateStatus]int, len(rows))
	for _, row := range rows {
		status, _ := candidate.ParseStatus(row.Status)
		counts[status] += row.Count
	}
	return counts, nil
}

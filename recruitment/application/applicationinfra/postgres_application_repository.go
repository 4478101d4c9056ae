package applicationinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/jmoiron/sqlx"
)

// PostgresApplicationRepository implements application.Repository using PostgreSQL
type PostgresApplicationRepository struct {
	db *sqlx.DB
}

// NewPostgresApplicationRepository creates a new PostgreSQL application repository
func NewPostgresApplicationRepository(db *sqlx.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{
		db: db,
	}
}

// ============================================================================
// Database Models
// ============================================================================

type applicationModel struct {
	ID          string         `db:"id"`
	CandidateID string         `db:"candidate_id"`
	ClientID    string         `db:"client_id"`
	JobTitle    string         `db:"job_title"`
	Status      string         `db:"status"`
	Notes       sql.NullString `db:"notes"`
	AuditLog    []byte         `db:"audit_log"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

const applicationColumns = `id, candidate_id, client_id, job_title, status, notes, audit_log, created_at, updated_at`

func (m applicationModel) toDomain() (*application.Application, error) {
	status, _ := application.ParseStatus(m.Status)
	app := &application.Application{
		ID:          kernel.ApplicationID(m.ID),
		CandidateID: kernel.CandidateID(m.CandidateID),
		ClientID:    kernel.ClientID(m.ClientID),
		JobTitle:    m.JobTitle,
		Status:      status,
		Notes:       m.Notes.String,
		AuditLog:    []application.AuditEntry{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if len(m.AuditLog) > 0 {
		if err := json.Unmarshal(m.AuditLog, &app.AuditLog); err != nil {
			return nil, fmt.Errorf("unmarshal audit log for application %s: %w", m.ID, err)
		}
	}
	return app, nil
}

func auditArg(log []application.AuditEntry) ([]byte, error) {
	if log == nil {
		log = []application.AuditEntry{}
	}
	return json.Marshal(log)
}

// ============================================================================
// Repository Methods
// ============================================================================

// Create creates a new application
func (r *PostgresApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	audit, err := auditArg(app.AuditLog)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		app.ID, app.CandidateID, app.ClientID, app.JobTitle, string(app.Status),
		sql.NullString{String: app.Notes, Valid: app.Notes != ""}, audit, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create application %s: %w", app.ID, err)
	}
	return nil
}

// Update updates an existing application
func (r *PostgresApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	audit, err := auditArg(app.AuditLog)
	if err != nil {
		return err
	}

	query := `
		UPDATE applications SET
			job_title = $2,
			status = $3,
			notes = $4,
			audit_log = $5,
			updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		app.ID, app.JobTitle, string(app.Status),
		sql.NullString{String: app.Notes, Valid: app.Notes != ""}, audit, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application %s: %w", app.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application %s: %w", app.ID, err)
	}
	if rows == 0 {
		return application.ErrApplicationNotFound().WithDetail("application_id", app.ID)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id kernel.ApplicationID) (*application.Application, error) {
	var model applicationModel
	err := r.db.GetContext(ctx, &model, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, application.ErrApplicationNotFound().WithDetail("application_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", id, err)
	}
	return model.toDomain()
}

// Delete deletes an application by ID
func (r *PostgresApplicationRepository) Delete(ctx context.Context, id kernel.ApplicationID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application %s: %w", id, err)
	}
	if rows == 0 {
		return application.ErrApplicationNotFound().WithDetail("application_id", id)
	}
	return nil
}

// List retrieves applications newest first
func (r *PostgresApplicationRepository) List(ctx context.Context, filter application.ListApplicationsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[application.Application], error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("upper(status) = $%d", len(args)))
	}
	if !filter.CandidateID.IsEmpty() {
		args = append(args, filter.CandidateID)
		where = append(where, fmt.Sprintf("candidate_id = $%d", len(args)))
	}
	if !filter.ClientID.IsEmpty() {
		args = append(args, filter.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("job_title ILIKE $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applications `+whereClause, args...); err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	p := pagination.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM applications %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		applicationColumns, whereClause, len(args)+1, len(args)+2)

	var models []applicationModel
	if err := r.db.SelectContext(ctx, &models, query, append(args, p.PageSize, p.Offset())...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	apps := make([]application.Application, 0, len(models))
	for _, m := range models {
		app, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return kernel.NewPaginated(apps, p, total), nil
}

// ExistsActive checks for an open application to the same role
func (r *PostgresApplicationRepository) ExistsActive(ctx context.Context, candidateID kernel.CandidateID, clientID kernel.ClientID, jobTitle string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE candidate_id = $1 AND client_id = $2
			AND lower(job_title) = lower($3)
			AND upper(status) NOT IN ('HIRED', 'REJECTED', 'WITHDRAWN')
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, candidateID, clientID, strings.TrimSpace(jobTitle)); err != nil {
		return false, fmt.Errorf("check application exists: %w", err)
	}
	return exists, nil
}

// CountByCandidate counts applications for a specific candidate
func (r *PostgresApplicationRepository) CountByCandidate(ctx context.Context, candidateID kernel.CandidateID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM applications WHERE candidate_id = $1`, candidateID); err != nil {
		return 0, fmt.Errorf("count applications for candidate %s: %w", candidateID, err)
	}
	return count, nil
}

func (r *PostgresApplicationRepository) CountByStatus(ctx context.Context) (map[application.ApplicationStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT upper(status) AS status, COUNT(*) AS count FROM applications GROUP BY upper(status)`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}

	counts := make(map[application.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		status, _ := application.ParseStatus(row.Status)
		counts[status] += row.Count
	}
	return counts, nil
}

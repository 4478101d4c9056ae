package clientinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/jmoiron/sqlx"
)

type PostgresClientRepository struct {
	db *sqlx.DB
}

func NewPostgresClientRepository(db *sqlx.DB) *PostgresClientRepository {
	return &PostgresClientRepository{db: db}
}

type clientRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Industry         sql.NullString `db:"industry"`
	Website          sql.NullString `db:"website"`
	ContactName      sql.NullString `db:"contact_name"`
	ContactEmail     sql.NullString `db:"contact_email"`
	ContactPhone     sql.NullString `db:"contact_phone"`
	Address          sql.NullString `db:"address"`
	Notes            sql.NullString `db:"notes"`
	InvitationStatus string         `db:"invitation_status"`
	InvitationToken  sql.NullString `db:"invitation_token"`
	InvitationSentAt *time.Time     `db:"invitation_sent_at"`
	RegisteredAt     *time.Time     `db:"registered_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

const clientColumns = `
	id, name, industry, website, contact_name, contact_email, contact_phone,
	address, notes, invitation_status, invitation_token, invitation_sent_at,
	registered_at, created_at, updated_at`

func (r clientRow) toDomain() *client.Client {
	status, _ := client.ParseInvitationStatus(r.InvitationStatus)
	return &client.Client{
		ID:               kernel.ClientID(r.ID),
		Name:             r.Name,
		Industry:         r.Industry.String,
		Website:          r.Website.String,
		ContactName:      r.ContactName.String,
		ContactEmail:     kernel.Email(r.ContactEmail.String),
		ContactPhone:     kernel.Phone(r.ContactPhone.String),
		Address:          r.Address.String,
		Notes:            r.Notes.String,
		InvitationStatus: status,
		InvitationToken:  r.InvitationToken.String,
		InvitationSentAt: r.InvitationSentAt,
		RegisteredAt:     r.RegisteredAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func createArgs(c *client.Client) []any {
	return []any{
		c.ID, c.Name, nullString(c.Industry), nullString(c.Website), nullString(c.ContactName),
		nullString(string(c.ContactEmail)), nullString(string(c.ContactPhone)),
		nullString(c.Address), nullString(c.Notes), string(c.InvitationStatus),
		nullString(c.InvitationToken), c.InvitationSentAt, c.RegisteredAt,
		c.CreatedAt, c.UpdatedAt,
	}
}

// Create creates a new client
func (r *PostgresClientRepository) Create(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15
		)
	`
	if _, err := r.db.ExecContext(ctx, query, createArgs(c)...); err != nil {
		return fmt.Errorf("create client %s: %w", c.ID, err)
	}
	return nil
}

// Update updates an existing client
func (r *PostgresClientRepository) Update(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients SET
			name = $2,
			industry = $3,
			website = $4,
			contact_name = $5,
			contact_email = $6,
			contact_phone = $7,
			address = $8,
			notes = $9,
			invitation_status = $10,
			invitation_token = $11,
			invitation_sent_at = $12,
			registered_at = $13,
			updated_at = $14
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, nullString(c.Industry), nullString(c.Website), nullString(c.ContactName),
		nullString(string(c.ContactEmail)), nullString(string(c.ContactPhone)),
		nullString(c.Address), nullString(c.Notes), string(c.InvitationStatus),
		nullString(c.InvitationToken), c.InvitationSentAt, c.RegisteredAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client %s: %w", c.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client %s: %w", c.ID, err)
	}
	if rows == 0 {
		return client.ErrClientNotFound().WithDetail("client_id", c.ID)
	}
	return nil
}

func (r *PostgresClientRepository) get(ctx context.Context, where string, arg any) (*client.Client, error) {
	var row clientRow
	err := r.db.GetContext(ctx, &row, `SELECT `+clientColumns+` FROM clients WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, client.ErrClientNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return row.toDomain(), nil
}

// GetByID retrieves a client by ID
func (r *PostgresClientRepository) GetByID(ctx context.Context, id kernel.ClientID) (*client.Client, error) {
	return r.get(ctx, "id = $1", string(id))
}

// GetByInvitationToken retrieves the client holding an outstanding invitation
func (r *PostgresClientRepository) GetByInvitationToken(ctx context.Context, token string) (*client.Client, error) {
	return r.get(ctx, "invitation_token = $1", token)
}

// Delete deletes a client by ID
func (r *PostgresClientRepository) Delete(ctx context.Context, id kernel.ClientID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	if rows == 0 {
		return client.ErrClientNotFound().WithDetail("client_id", id)
	}
	return nil
}

// List retrieves clients sorted by name
func (r *PostgresClientRepository) List(ctx context.Context, filter client.ListClientsRequest, pagination kernel.PaginationOptions) (*kernel.Paginated[client.Client], error) {
	var (
		where []string
		args  []any
	)
	if filter.InvitationStatus != "" {
		args = append(args, string(filter.InvitationStatus))
		where = append(where, fmt.Sprintf("invitation_status = $%d", len(args)))
	}
	if industry := strings.TrimSpace(filter.Industry); industry != "" {
		args = append(args, industry)
		where = append(where, fmt.Sprintf("lower(industry) = lower($%d)", len(args)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR contact_name ILIKE $%d OR contact_email ILIKE $%d)", n, n, n))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM clients `+whereClause, args...); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}

	p := pagination.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM clients %s ORDER BY lower(name), id LIMIT $%d OFFSET $%d`,
		clientColumns, whereClause, len(args)+1, len(args)+2)

	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, p.PageSize, p.Offset())...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]client.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, *row.toDomain())
	}
	return kernel.NewPaginated(clients, p, total), nil
}

func (r *PostgresClientRepository) CountByInvitationStatus(ctx context.Context) (map[client.InvitationStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	query := `SELECT invitation_status AS status, COUNT(*) AS count FROM clients GROUP BY invitation_status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count clients by invitation status: %w", err)
	}

	counts := make(map[client.InvitationStatus]int, len(rows))
	for _, row := range rows {
		status, _ := client.ParseInvitationStatus(row.Status)
		counts[status] += row.Count
	}
	return counts, nil
}

package userinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) user.Repository {
	return &PostgresUserRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	FullName     sql.NullString `db:"full_name"`
	Role         string         `db:"role"`
	ClientID     sql.NullString `db:"client_id"`
	TenantID     sql.NullString `db:"tenant_id"`
	PasswordHash string         `db:"password_hash"`
	CreatedAt    sql.NullTime   `db:"created_at"`
}

func (r userRow) toDomain() *user.User {
	role, _ := user.ParseRole(r.Role)
	return &user.User{
		ID:           kernel.UserID(r.ID),
		Username:     r.Username,
		Email:        kernel.Email(r.Email),
		FullName:     r.FullName.String,
		Role:         role,
		ClientID:     kernel.ClientID(r.ClientID.String),
		TenantID:     kernel.TenantID(r.TenantID.String),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
	}
}

const userColumns = `id, username, email, full_name, role, client_id, tenant_id, password_hash, created_at`

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		nullString(u.FullName),
		u.Role,
		nullString(string(u.ClientID)),
		nullString(string(u.TenantID)),
		u.PasswordHash,
		u.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return user.ErrUsernameTaken().WithDetail("username", u.Username)
		}
		return fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

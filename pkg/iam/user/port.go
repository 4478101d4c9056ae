package user

import (
	"context"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id kernel.UserID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

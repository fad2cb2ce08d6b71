package repository

import (
	"context"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
)

// IdentityStore defines the persistence boundary for users and their
// dependents. Implementations report missing rows as domain ErrNotFound and
// a duplicate user email as domain ErrConflict, whatever the pre-checks said.
type IdentityStore interface {
	// CreateUser persists u together with u.Addresses and u.Phones in one
	// unit, assigning ids and setting each dependent's UserID.
	CreateUser(ctx context.Context, u *entity.User) error
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	// GetUserByEmail loads the user with its dependents.
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateUser writes name, email and password hash only.
	UpdateUser(ctx context.Context, u *entity.User) error
	// DeleteUserByEmail removes the user and its dependents. Deleting an
	// unknown email is not an error.
	DeleteUserByEmail(ctx context.Context, email string) error

	CreateAddress(ctx context.Context, a *entity.Address) error
	GetAddressByID(ctx context.Context, id int64) (*entity.Address, error)
	UpdateAddress(ctx context.Context, a *entity.Address) error

	CreatePhone(ctx context.Context, p *entity.Phone) error
	GetPhoneByID(ctx context.Context, id int64) (*entity.Phone, error)
	UpdatePhone(ctx context.Context, p *entity.Phone) error
}

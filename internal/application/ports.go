package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
)

// Hasher is the credential hasher.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Tokens is the token service as seen by the identity service.
type Tokens interface {
	Issue(subject string) (string, time.Time, error)
	// Authorize returns the subject of a signature-valid, unexpired token.
	Authorize(token string) (string, error)
}

// ProfileCache caches outward user projections by email.
//
// Every Invalidate bumps the email's generation. A fill passes the
// generation read before the store lookup, and Set drops it when a write
// has invalidated the email since.
type ProfileCache interface {
	Get(ctx context.Context, email string) (*entity.User, bool)
	Generation(ctx context.Context, email string) (int64, bool)
	Set(ctx context.Context, u *entity.User, gen int64)
	Invalidate(ctx context.Context, emails ...string)
}

// UserIndexer keeps a searchable user directory in step with the store.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, email string) error
	// Search returns matching users carrying only id, name and email.
	Search(ctx context.Context, q string, size int) ([]entity.User, error)
}

// Publisher enqueues JSON jobs (email notifications).
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// PostalLookup resolves a postal code to an address. External and opaque.
type PostalLookup interface {
	Lookup(ctx context.Context, postalCode string) (entity.PostalAddress, error)
}

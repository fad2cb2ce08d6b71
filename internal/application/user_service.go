package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
	"github.com/oksasatya/go-user-identity/internal/domain/merge"
	repo "github.com/oksasatya/go-user-identity/internal/domain/repository"
	"github.com/oksasatya/go-user-identity/pkg/helpers"
	"github.com/oksasatya/go-user-identity/pkg/mailer"
	tpl "github.com/oksasatya/go-user-identity/pkg/mailer/templates"
)

// Service is the identity service: registration, authentication, profile
// updates and dependent (address/phone) management.
//
// Cache, Indexer, Mail and Postal are optional; a nil value disables the
// feature. Failures in Cache, Indexer and Mail are logged and never fail
// the calling operation.
type Service struct {
	Store  repo.IdentityStore
	Hasher Hasher
	Tokens Tokens
	Logger *logrus.Logger

	Cache   ProfileCache
	Indexer UserIndexer
	Mail    Publisher
	Postal  PostalLookup
	AppName string
}

func NewService(store repo.IdentityStore, hasher Hasher, tokens Tokens, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Service{Store: store, Hasher: hasher, Tokens: tokens, Logger: logger}
}

// Session is the result of a successful authentication.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register creates a user, and any addresses/phones supplied with it, after
// checking that the email is free. A uniqueness violation raised by the store
// (a concurrent registration that won the race) is reported the same way.
func (s *Service) Register(ctx context.Context, in entity.NewUser) (*entity.User, error) {
	const op = "user.Register"

	exists, err := s.Store.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domerrors.ConflictError{Op: op, Field: "email"}
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: hash password: %w", op, err)
	}

	u := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Addresses:    make([]entity.Address, 0, len(in.Addresses)),
		Phones:       make([]entity.Phone, 0, len(in.Phones)),
	}
	// owner ids are filled in by the store once the user id exists
	for _, a := range in.Addresses {
		u.Addresses = append(u.Addresses, a.ToAddress(0))
	}
	for _, p := range in.Phones {
		u.Phones = append(u.Phones, p.ToPhone(0))
	}

	if err := s.Store.CreateUser(ctx, u); err != nil {
		if domerrors.IsConflict(err) {
			return nil, domerrors.ConflictError{Op: op, Field: "email"}
		}
		return nil, err
	}
	registrations.Add(1)
	s.Logger.WithField("user_id", u.ID).Info("user registered")

	s.index(ctx, u)
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     tpl.NewWelcomeData(s.AppName, u.Name, u.Email, tpl.WithTime(time.Now())),
	})
	return u, nil
}

// Authenticate verifies the credential pair and issues a session token whose
// subject is the email. Unknown email and wrong password are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	const op = "user.Authenticate"

	u, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if domerrors.IsNotFound(err) {
			failedLogins.Add(1)
			return Session{}, domerrors.OpError{Op: op, Kind: domerrors.ErrUnauthorized, Msg: "invalid credentials"}
		}
		return Session{}, err
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		failedLogins.Add(1)
		return Session{}, domerrors.OpError{Op: op, Kind: domerrors.ErrUnauthorized, Msg: "invalid credentials"}
	}

	token, exp, err := s.Tokens.Issue(u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return Session{}, err
	}
	logins.Add(1)
	return Session{Token: token, ExpiresAt: exp}, nil
}

// FetchByEmail returns the user with its dependents. The password hash is
// never part of the returned value.
func (s *Service) FetchByEmail(ctx context.Context, email string) (*entity.User, error) {
	var (
		gen     int64
		canFill bool
	)
	if s.Cache != nil {
		if u, ok := s.Cache.Get(ctx, email); ok {
			return u, nil
		}
		gen, canFill = s.Cache.Generation(ctx, email)
	}
	u, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if domerrors.IsNotFound(err) {
			return nil, domerrors.NotFoundError{Op: "user.FetchByEmail", Resource: "user"}
		}
		return nil, err
	}
	out := *u
	out.PasswordHash = ""
	if canFill {
		s.Cache.Set(ctx, &out, gen)
	}
	return &out, nil
}

// DeleteByEmail removes the user and, through the store, its dependents.
// An unknown email is not an error.
func (s *Service) DeleteByEmail(ctx context.Context, email string) error {
	if err := s.Store.DeleteUserByEmail(ctx, email); err != nil {
		return err
	}
	s.invalidate(ctx, email)
	if s.Indexer != nil {
		if err := s.Indexer.Remove(ctx, email); err != nil {
			s.Logger.WithError(err).Warn("user index removal failed")
		}
	}
	s.Logger.Info("user deleted")
	return nil
}

// UpdateProfile merges patch onto the token subject's record. A non-nil
// password is hashed first; dependents are left alone.
func (s *Service) UpdateProfile(ctx context.Context, authorization string, patch entity.UserPatch) (*entity.User, error) {
	const op = "user.UpdateProfile"

	current, err := s.authorize(ctx, op, authorization)
	if err != nil {
		return nil, err
	}

	if patch.Password != nil {
		hash, err := s.Hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: hash password: %w", op, err)
		}
		patch.Password = &hash
	}

	changes := merge.Changed(patch, *current)
	merged := merge.User(patch, *current)
	if err := s.Store.UpdateUser(ctx, &merged); err != nil {
		if domerrors.IsConflict(err) {
			return nil, domerrors.ConflictError{Op: op, Field: "email"}
		}
		return nil, err
	}
	s.invalidate(ctx, current.Email, merged.Email)
	s.Logger.WithFields(logrus.Fields{"user_id": merged.ID, "changes": changes}).Info("profile updated")

	if merged.Email != current.Email && s.Indexer != nil {
		if err := s.Indexer.Remove(ctx, current.Email); err != nil {
			s.Logger.WithError(err).Warn("user index removal failed")
		}
	}
	s.index(ctx, &merged)
	if len(changes) > 0 {
		s.notify(ctx, mailer.EmailJob{
			To:       merged.Email,
			Template: tpl.ProfileUpdated,
			Data:     tpl.NewProfileUpdatedData(s.AppName, merged.Name, merged.Email, changes, tpl.WithTime(time.Now())),
		})
	}
	return &merged, nil
}

// AddAddress creates a new address owned by the token subject. Every field
// of the patch is taken as given.
func (s *Service) AddAddress(ctx context.Context, authorization string, patch entity.AddressPatch) (*entity.Address, error) {
	owner, err := s.authorize(ctx, "user.AddAddress", authorization)
	if err != nil {
		return nil, err
	}
	a := patch.ToAddress(owner.ID)
	if err := s.Store.CreateAddress(ctx, &a); err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner.Email)
	return &a, nil
}

// AddPhone creates a new phone owned by the token subject.
func (s *Service) AddPhone(ctx context.Context, authorization string, patch entity.PhonePatch) (*entity.Phone, error) {
	owner, err := s.authorize(ctx, "user.AddPhone", authorization)
	if err != nil {
		return nil, err
	}
	p := patch.ToPhone(owner.ID)
	if err := s.Store.CreatePhone(ctx, &p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner.Email)
	return &p, nil
}

// UpdateAddress merges patch onto address id, which must belong to the
// token subject.
func (s *Service) UpdateAddress(ctx context.Context, authorization string, id int64, patch entity.AddressPatch) (*entity.Address, error) {
	const op = "user.UpdateAddress"

	owner, err := s.authorize(ctx, op, authorization)
	if err != nil {
		return nil, err
	}
	current, err := s.Store.GetAddressByID(ctx, id)
	if err != nil {
		if domerrors.IsNotFound(err) {
			return nil, domerrors.NotFoundError{Op: op, Resource: "address"}
		}
		return nil, err
	}
	if current.UserID != owner.ID {
		s.Logger.WithFields(logrus.Fields{"user_id": owner.ID, "address_id": id}).Warn("address update by non-owner")
		return nil, domerrors.OpError{Op: op, Kind: domerrors.ErrForbidden, Msg: "address belongs to another user"}
	}

	merged := merge.Address(patch, *current)
	if err := s.Store.UpdateAddress(ctx, &merged); err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner.Email)
	return &merged, nil
}

// UpdatePhone merges patch onto phone id, which must belong to the token
// subject.
func (s *Service) UpdatePhone(ctx context.Context, authorization string, id int64, patch entity.PhonePatch) (*entity.Phone, error) {
	const op = "user.UpdatePhone"

	owner, err := s.authorize(ctx, op, authorization)
	if err != nil {
		return nil, err
	}
	current, err := s.Store.GetPhoneByID(ctx, id)
	if err != nil {
		if domerrors.IsNotFound(err) {
			return nil, domerrors.NotFoundError{Op: op, Resource: "phone"}
		}
		return nil, err
	}
	if current.UserID != owner.ID {
		s.Logger.WithFields(logrus.Fields{"user_id": owner.ID, "phone_id": id}).Warn("phone update by non-owner")
		return nil, domerrors.OpError{Op: op, Kind: domerrors.ErrForbidden, Msg: "phone belongs to another user"}
	}

	merged := merge.Phone(patch, *current)
	if err := s.Store.UpdatePhone(ctx, &merged); err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner.Email)
	return &merged, nil
}

// SearchUsers queries the user directory. Without an indexer it returns an
// empty result.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error) {
	if s.Indexer == nil {
		return []entity.User{}, nil
	}
	return s.Indexer.Search(ctx, q, size)
}

// LookupPostalCode proxies the external postal-code service.
func (s *Service) LookupPostalCode(ctx context.Context, postalCode string) (entity.PostalAddress, error) {
	if s.Postal == nil {
		return entity.PostalAddress{}, fmt.Errorf("postal lookup not configured")
	}
	return s.Postal.Lookup(ctx, postalCode)
}

// authorize strips the bearer prefix, checks signature and expiry, and loads
// the subject's user record.
func (s *Service) authorize(ctx context.Context, op, authorization string) (*entity.User, error) {
	token, err := helpers.StripBearer(authorization)
	if err != nil {
		return nil, err
	}
	email, err := s.Tokens.Authorize(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if domerrors.IsNotFound(err) {
			return nil, domerrors.NotFoundError{Op: op, Resource: "user"}
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) invalidate(ctx context.Context, emails ...string) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, emails...)
	}
}

func (s *Service) index(ctx context.Context, u *entity.User) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("user index failed")
	}
}

func (s *Service) notify(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil {
		return
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("failed to publish email job")
	}
}

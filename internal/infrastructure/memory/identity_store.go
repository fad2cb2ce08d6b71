// Package memory is an in-process IdentityStore. It backs tests and the
// APP_STORE=memory development mode; data is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
	"github.com/oksasatya/go-user-identity/internal/domain/repository"
)

type IdentityStore struct {
	mu sync.RWMutex

	users     map[int64]entity.User // dependents are kept in their own maps
	byEmail   map[string]int64
	addresses map[int64]entity.Address
	phones    map[int64]entity.Phone

	lastUserID    int64
	lastAddressID int64
	lastPhoneID   int64
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		users:     make(map[int64]entity.User),
		byEmail:   make(map[string]int64),
		addresses: make(map[int64]entity.Address),
		phones:    make(map[int64]entity.Phone),
	}
}

func (s *IdentityStore) CreateUser(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return domerrors.ConflictError{Op: "memory.CreateUser", Field: "email"}
	}
	s.lastUserID++
	id := s.lastUserID
	s.users[id] = entity.User{ID: id, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash}
	s.byEmail[u.Email] = id

	addresses := make([]entity.Address, len(u.Addresses))
	for i, a := range u.Addresses {
		s.lastAddressID++
		a.ID, a.UserID = s.lastAddressID, id
		s.addresses[a.ID] = a
		addresses[i] = a
	}
	phones := make([]entity.Phone, len(u.Phones))
	for i, p := range u.Phones {
		s.lastPhoneID++
		p.ID, p.UserID = s.lastPhoneID, id
		s.phones[p.ID] = p
		phones[i] = p
	}

	u.ID = id
	u.Addresses = addresses
	u.Phones = phones
	return nil
}

func (s *IdentityStore) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domerrors.NotFoundError{Op: "memory.GetUserByID", Resource: "user"}
	}
	return s.withDependents(u), nil
}

func (s *IdentityStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, domerrors.NotFoundError{Op: "memory.GetUserByEmail", Resource: "user"}
	}
	return s.withDependents(s.users[id]), nil
}

func (s *IdentityStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *IdentityStore) UpdateUser(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return domerrors.NotFoundError{Op: "memory.UpdateUser", Resource: "user"}
	}
	if u.Email != cur.Email {
		if _, taken := s.byEmail[u.Email]; taken {
			return domerrors.ConflictError{Op: "memory.UpdateUser", Field: "email"}
		}
		delete(s.byEmail, cur.Email)
		s.byEmail[u.Email] = u.ID
	}
	s.users[u.ID] = entity.User{ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash}
	return nil
}

func (s *IdentityStore) DeleteUserByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil
	}
	for aid, a := range s.addresses {
		if a.UserID == id {
			delete(s.addresses, aid)
		}
	}
	for pid, p := range s.phones {
		if p.UserID == id {
			delete(s.phones, pid)
		}
	}
	delete(s.users, id)
	delete(s.byEmail, email)
	return nil
}

func (s *IdentityStore) CreateAddress(ctx context.Context, a *entity.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[a.UserID]; !ok {
		return domerrors.NotFoundError{Op: "memory.CreateAddress", Resource: "user"}
	}
	s.lastAddressID++
	a.ID = s.lastAddressID
	s.addresses[a.ID] = *a
	return nil
}

func (s *IdentityStore) GetAddressByID(ctx context.Context, id int64) (*entity.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.addresses[id]
	if !ok {
		return nil, domerrors.NotFoundError{Op: "memory.GetAddressByID", Resource: "address"}
	}
	return &a, nil
}

func (s *IdentityStore) UpdateAddress(ctx context.Context, a *entity.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.addresses[a.ID]
	if !ok {
		return domerrors.NotFoundError{Op: "memory.UpdateAddress", Resource: "address"}
	}
	next := *a
	next.UserID = cur.UserID
	s.addresses[a.ID] = next
	return nil
}

func (s *IdentityStore) CreatePhone(ctx context.Context, p *entity.Phone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.UserID]; !ok {
		return domerrors.NotFoundError{Op: "memory.CreatePhone", Resource: "user"}
	}
	s.lastPhoneID++
	p.ID = s.lastPhoneID
	s.phones[p.ID] = *p
	return nil
}

func (s *IdentityStore) GetPhoneByID(ctx context.Context, id int64) (*entity.Phone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.phones[id]
	if !ok {
		return nil, domerrors.NotFoundError{Op: "memory.GetPhoneByID", Resource: "phone"}
	}
	return &p, nil
}

func (s *IdentityStore) UpdatePhone(ctx context.Context, p *entity.Phone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.phones[p.ID]
	if !ok {
		return domerrors.NotFoundError{Op: "memory.UpdatePhone", Resource: "phone"}
	}
	next := *p
	next.UserID = cur.UserID
	s.phones[p.ID] = next
	return nil
}

// withDependents returns a copy of u with its addresses and phones in id order.
func (s *IdentityStore) withDependents(u entity.User) *entity.User {
	out := u
	out.Addresses = nil
	out.Phones = nil
	for id := int64(1); id <= s.lastAddressID; id++ {
		if a, ok := s.addresses[id]; ok && a.UserID == u.ID {
			out.Addresses = append(out.Addresses, a)
		}
	}
	for id := int64(1); id <= s.lastPhoneID; id++ {
		if p, ok := s.phones[id]; ok && p.UserID == u.ID {
			out.Phones = append(out.Phones, p)
		}
	}
	return &out
}

var _ repository.IdentityStore = (*IdentityStore)(nil)

package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
	"github.com/oksasatya/go-user-identity/internal/domain/repository"
)

const (
	insertUserSQL = `
		INSERT INTO usuario (nome, email, senha)
		VALUES ($1, $2, $3)
		RETURNING id`
	selectUserSQL = `
		SELECT id, nome, email, senha
		FROM usuario`
	updateUserSQL = `
		UPDATE usuario
		SET nome = $1, email = $2, senha = $3
		WHERE id = $4`
	deleteUserByEmailSQL = `DELETE FROM usuario WHERE email = $1`
	existsByEmailSQL     = `SELECT EXISTS (SELECT 1 FROM usuario WHERE email = $1)`

	insertAddressSQL = `
		INSERT INTO endereco (rua, numero, complemento, cidade, estado, cep, usuario_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	selectAddressSQL = `
		SELECT id, rua, numero, complemento, cidade, estado, cep, usuario_id
		FROM endereco`
	updateAddressSQL = `
		UPDATE endereco
		SET rua = $1, numero = $2, complemento = $3, cidade = $4, estado = $5, cep = $6
		WHERE id = $7`

	insertPhoneSQL = `
		INSERT INTO telefone (numero, ddd, usuario_id)
		VALUES ($1, $2, $3)
		RETURNING id`
	selectPhoneSQL = `
		SELECT id, numero, ddd, usuario_id
		FROM telefone`
	updatePhoneSQL = `
		UPDATE telefone
		SET numero = $1, ddd = $2
		WHERE id = $3`
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IdentityStore persists users, addresses and phones in Postgres.
// Dependents cascade on user delete through their foreign keys.
type IdentityStore struct {
	pool *pgxpool.Pool
}

func NewIdentityStore(pool *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{pool: pool}
}

func (s *IdentityStore) CreateUser(ctx context.Context, u *entity.User) error {
	const op = "postgres.CreateUser"

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, insertUserSQL, u.Name, u.Email, u.PasswordHash).Scan(&id); err != nil {
		if field, ok := classifyUniqueViolation(err); ok {
			return domerrors.ConflictError{Op: op, Field: field}
		}
		return err
	}

	addresses := make([]entity.Address, len(u.Addresses))
	for i, a := range u.Addresses {
		a.UserID = id
		if err := insertAddress(ctx, tx, &a); err != nil {
			return err
		}
		addresses[i] = a
	}
	phones := make([]entity.Phone, len(u.Phones))
	for i, p := range u.Phones {
		p.UserID = id
		if err := insertPhone(ctx, tx, &p); err != nil {
			return err
		}
		phones[i] = p
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	u.ID = id
	u.Addresses = addresses
	u.Phones = phones
	return nil
}

func (s *IdentityStore) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	return s.getUser(ctx, "postgres.GetUserByID", selectUserSQL+` WHERE id = $1`, id)
}

func (s *IdentityStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.getUser(ctx, "postgres.GetUserByEmail", selectUserSQL+` WHERE email = $1`, email)
}

func (s *IdentityStore) getUser(ctx context.Context, op, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domerrors.NotFoundError{Op: op, Resource: "user"}
		}
		return nil, err
	}
	if u.Addresses, err = listAddresses(ctx, s.pool, u.ID); err != nil {
		return nil, err
	}
	if u.Phones, err = listPhones(ctx, s.pool, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *IdentityStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, existsByEmailSQL, email).Scan(&exists)
	return exists, err
}

func (s *IdentityStore) UpdateUser(ctx context.Context, u *entity.User) error {
	const op = "postgres.UpdateUser"
	res, err := s.pool.Exec(ctx, updateUserSQL, u.Name, u.Email, u.PasswordHash, u.ID)
	if err != nil {
		if field, ok := classifyUniqueViolation(err); ok {
			return domerrors.ConflictError{Op: op, Field: field}
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return domerrors.NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

func (s *IdentityStore) DeleteUserByEmail(ctx context.Context, email string) error {
	_, err := s.pool.Exec(ctx, deleteUserByEmailSQL, email)
	return err
}

func (s *IdentityStore) CreateAddress(ctx context.Context, a *entity.Address) error {
	return insertAddress(ctx, s.pool, a)
}

func (s *IdentityStore) GetAddressByID(ctx context.Context, id int64) (*entity.Address, error) {
	a := &entity.Address{}
	err := s.pool.QueryRow(ctx, selectAddressSQL+` WHERE id = $1`, id).
		Scan(&a.ID, &a.Street, &a.Number, &a.Complement, &a.City, &a.State, &a.PostalCode, &a.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domerrors.NotFoundError{Op: "postgres.GetAddressByID", Resource: "address"}
		}
		return nil, err
	}
	return a, nil
}

func (s *IdentityStore) UpdateAddress(ctx context.Context, a *entity.Address) error {
	res, err := s.pool.Exec(ctx, updateAddressSQL, a.Street, a.Number, a.Complement, a.City, a.State, a.PostalCode, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domerrors.NotFoundError{Op: "postgres.UpdateAddress", Resource: "address"}
	}
	return nil
}

func (s *IdentityStore) CreatePhone(ctx context.Context, p *entity.Phone) error {
	return insertPhone(ctx, s.pool, p)
}

func (s *IdentityStore) GetPhoneByID(ctx context.Context, id int64) (*entity.Phone, error) {
	p := &entity.Phone{}
	err := s.pool.QueryRow(ctx, selectPhoneSQL+` WHERE id = $1`, id).Scan(&p.ID, &p.Number, &p.AreaCode, &p.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domerrors.NotFoundError{Op: "postgres.GetPhoneByID", Resource: "phone"}
		}
		return nil, err
	}
	return p, nil
}

func (s *IdentityStore) UpdatePhone(ctx context.Context, p *entity.Phone) error {
	res, err := s.pool.Exec(ctx, updatePhoneSQL, p.Number, p.AreaCode, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domerrors.NotFoundError{Op: "postgres.UpdatePhone", Resource: "phone"}
	}
	return nil
}

func insertAddress(ctx context.Context, q querier, a *entity.Address) error {
	err := q.QueryRow(ctx, insertAddressSQL, a.Street, a.Number, a.Complement, a.City, a.State, a.PostalCode, a.UserID).Scan(&a.ID)
	if isForeignKeyViolation(err) {
		return domerrors.NotFoundError{Op: "postgres.CreateAddress", Resource: "user"}
	}
	return err
}

func insertPhone(ctx context.Context, q querier, p *entity.Phone) error {
	err := q.QueryRow(ctx, insertPhoneSQL, p.Number, p.AreaCode, p.UserID).Scan(&p.ID)
	if isForeignKeyViolation(err) {
		return domerrors.NotFoundError{Op: "postgres.CreatePhone", Resource: "user"}
	}
	return err
}

func listAddresses(ctx context.Context, q querier, userID int64) ([]entity.Address, error) {
	rows, err := q.Query(ctx, selectAddressSQL+` WHERE usuario_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Address, error) {
		var a entity.Address
		err := row.Scan(&a.ID, &a.Street, &a.Number, &a.Complement, &a.City, &a.State, &a.PostalCode, &a.UserID)
		return a, err
	})
}

func listPhones(ctx context.Context, q querier, userID int64) ([]entity.Phone, error) {
	rows, err := q.Query(ctx, selectPhoneSQL+` WHERE usuario_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Phone, error) {
		var p entity.Phone
		err := row.Scan(&p.ID, &p.Number, &p.AreaCode, &p.UserID)
		return p, err
	})
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503" // foreign_key_violation
}

func classifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}
	if strings.Contains(strings.ToLower(pgErr.ConstraintName), "email") {
		return "email", true
	}
	return "", true
}

var _ repository.IdentityStore = (*IdentityStore)(nil)

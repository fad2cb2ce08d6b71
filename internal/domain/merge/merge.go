// Package merge applies partial records onto stored ones. A non-nil incoming
// field replaces the stored value, a nil one keeps it. Identifiers and owner
// references always come from the stored record.
package merge

import "github.com/oksasatya/go-user-identity/internal/domain/entity"

// User merges in onto stored. in.Password must already be a hash by the time
// it gets here. Addresses and phones are carried over untouched; they change
// only through the dedicated dependent operations.
func User(in entity.UserPatch, stored entity.User) entity.User {
	return entity.User{
		ID:           stored.ID,
		Name:         pick(in.Name, stored.Name),
		Email:        pick(in.Email, stored.Email),
		PasswordHash: pick(in.Password, stored.PasswordHash),
		Addresses:    stored.Addresses,
		Phones:       stored.Phones,
	}
}

// Address merges in onto stored.
func Address(in entity.AddressPatch, stored entity.Address) entity.Address {
	return entity.Address{
		ID:         stored.ID,
		Street:     pick(in.Street, stored.Street),
		Number:     pick(in.Number, stored.Number),
		Complement: pick(in.Complement, stored.Complement),
		City:       pick(in.City, stored.City),
		State:      pick(in.State, stored.State),
		PostalCode: pick(in.PostalCode, stored.PostalCode),
		UserID:     stored.UserID,
	}
}

// Phone merges in onto stored.
func Phone(in entity.PhonePatch, stored entity.Phone) entity.Phone {
	return entity.Phone{
		ID:       stored.ID,
		Number:   pick(in.Number, stored.Number),
		AreaCode: pick(in.AreaCode, stored.AreaCode),
		UserID:   stored.UserID,
	}
}

// Changed lists the user fields in would actually modify on stored.
func Changed(in entity.UserPatch, stored entity.User) []string {
	var out []string
	if in.Name != nil && *in.Name != stored.Name {
		out = append(out, "name")
	}
	if in.Email != nil && *in.Email != stored.Email {
		out = append(out, "email")
	}
	if in.Password != nil {
		out = append(out, "password")
	}
	return out
}

func pick[T any](in *T, stored T) T {
	if in != nil {
		return *in
	}
	return stored
}

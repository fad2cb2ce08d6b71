package merge

import (
	"reflect"
	"testing"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
)

func ptr[T any](v T) *T { return &v }

func storedUser() entity.User {
	return entity.User{
		ID:           7,
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "$2a$10$hash",
		Addresses:    []entity.Address{{ID: 1, Street: "Rua A", UserID: 7}},
		Phones:       []entity.Phone{{ID: 2, Number: "99999999", AreaCode: "011", UserID: 7}},
	}
}

func TestUserEmptyPatchIsIdentity(t *testing.T) {
	stored := storedUser()
	got := User(entity.UserPatch{}, stored)
	if !reflect.DeepEqual(got, stored) {
		t.Fatalf("merge with empty patch changed the record:\ngot  %+v\nwant %+v", got, stored)
	}
}

func TestUserSingleField(t *testing.T) {
	stored := storedUser()
	got := User(entity.UserPatch{Name: ptr("New Name")}, stored)
	if got.Name != "New Name" {
		t.Fatalf("Name = %q, want %q", got.Name, "New Name")
	}
	want := stored
	want.Name = "New Name"
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("other fields changed:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestUserKeepsDependentsAndID(t *testing.T) {
	stored := storedUser()
	got := User(entity.UserPatch{Email: ptr("b@x.com"), Password: ptr("$2a$10$other")}, stored)
	if got.ID != stored.ID {
		t.Fatalf("ID = %d, want %d", got.ID, stored.ID)
	}
	if !reflect.DeepEqual(got.Addresses, stored.Addresses) || !reflect.DeepEqual(got.Phones, stored.Phones) {
		t.Fatalf("dependents must not be touched by a user merge")
	}
	if got.Email != "b@x.com" || got.PasswordHash != "$2a$10$other" {
		t.Fatalf("unexpected merge result %+v", got)
	}
}

func TestUserIsIdempotent(t *testing.T) {
	stored := storedUser()
	patch := entity.UserPatch{Name: ptr("Bia")}
	once := User(patch, stored)
	twice := User(patch, once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not idempotent:\nonce  %+v\ntwice %+v", once, twice)
	}
}

func TestAddress(t *testing.T) {
	stored := entity.Address{
		ID: 3, Street: "Rua A", Number: 10, Complement: "apto 1",
		City: "Sao Paulo", State: "SP", PostalCode: "01001-000", UserID: 7,
	}

	if got := Address(entity.AddressPatch{}, stored); got != stored {
		t.Fatalf("empty patch changed address: %+v", got)
	}

	got := Address(entity.AddressPatch{Number: ptr(int64(0)), City: ptr("Campinas")}, stored)
	want := stored
	want.Number = 0
	want.City = "Campinas"
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPhone(t *testing.T) {
	stored := entity.Phone{ID: 4, Number: "12345678", AreaCode: "011", UserID: 7}

	if got := Phone(entity.PhonePatch{}, stored); got != stored {
		t.Fatalf("empty patch changed phone: %+v", got)
	}

	got := Phone(entity.PhonePatch{AreaCode: ptr("021")}, stored)
	if got.AreaCode != "021" || got.Number != stored.Number || got.ID != 4 || got.UserID != 7 {
		t.Fatalf("unexpected phone %+v", got)
	}
}

func TestChanged(t *testing.T) {
	stored := storedUser()
	got := Changed(entity.UserPatch{Name: ptr("Ana"), Email: ptr("z@x.com"), Password: ptr("h")}, stored)
	want := []string{"email", "password"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Changed = %v, want %v", got, want)
	}
	if got := Changed(entity.UserPatch{}, stored); len(got) != 0 {
		t.Fatalf("Changed on empty patch = %v", got)
	}
}

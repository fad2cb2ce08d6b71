package entity

// User is the aggregate root for the identity domain.
// PasswordHash holds a bcrypt hash; plaintext passwords never reach this type.
// Addresses and Phones are owned exclusively by the user.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Addresses    []Address
	Phones       []Phone
}

// UserPatch is a partial user record. A nil field means "leave unchanged".
// Password carries plaintext and is hashed before it is merged.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// NewUser is the registration candidate: the plaintext password plus any
// dependents the caller wants created with the user.
type NewUser struct {
	Name      string
	Email     string
	Password  string
	Addresses []AddressPatch
	Phones    []PhonePatch
}

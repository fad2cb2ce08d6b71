package entity

// Address is a dependent of exactly one User (UserID). It is never
// reassigned to a different owner.
type Address struct {
	ID         int64
	Street     string
	Number     int64
	Complement string
	City       string
	State      string
	PostalCode string
	UserID     int64
}

// AddressPatch is a partial address. A nil field means "leave unchanged".
type AddressPatch struct {
	Street     *string
	Number     *int64
	Complement *string
	City       *string
	State      *string
	PostalCode *string
}

// ToAddress builds a new address owned by userID, taking every field as given.
func (p AddressPatch) ToAddress(userID int64) Address {
	a := Address{UserID: userID}
	if p.Street != nil {
		a.Street = *p.Street
	}
	if p.Number != nil {
		a.Number = *p.Number
	}
	if p.Complement != nil {
		a.Complement = *p.Complement
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.State != nil {
		a.State = *p.State
	}
	if p.PostalCode != nil {
		a.PostalCode = *p.PostalCode
	}
	return a
}

// PostalAddress is what an external postal-code service returns for a CEP.
type PostalAddress struct {
	PostalCode   string
	Street       string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

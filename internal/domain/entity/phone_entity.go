package entity

// Phone is a dependent of exactly one User. AreaCode is text so leading
// zeros survive ("011" != "11").
type Phone struct {
	ID       int64
	Number   string
	AreaCode string
	UserID   int64
}

// PhonePatch is a partial phone. A nil field means "leave unchanged".
type PhonePatch struct {
	Number   *string
	AreaCode *string
}

// ToPhone builds a new phone owned by userID.
func (p PhonePatch) ToPhone(userID int64) Phone {
	ph := Phone{UserID: userID}
	if p.Number != nil {
		ph.Number = *p.Number
	}
	if p.AreaCode != nil {
		ph.AreaCode = *p.AreaCode
	}
	return ph
}

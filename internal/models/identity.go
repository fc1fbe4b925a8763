package models

import "encoding/json"

// IdentityRecord is a user identity. Clients are identities without a
// professional profile.
type IdentityRecord struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
}

func (i IdentityRecord) FullName() string {
	return joinNonEmpty(" ", i.FirstName, i.LastName)
}

func (i IdentityRecord) Location() string {
	return joinNonEmpty(", ", i.City, i.Country)
}

func (i *IdentityRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         LooseString `json:"id"`
		DocumentID LooseString `json:"_id"`
		FirstName  LooseString `json:"firstName"`
		LastName   LooseString `json:"lastName"`
		Email      LooseString `json:"email"`
		Phone      LooseString `json:"phone"`
		City       LooseString `json:"city"`
		Country    LooseString `json:"country"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = IdentityRecord{
		ID:        firstNonEmpty(raw.ID.String(), raw.DocumentID.String()),
		FirstName: raw.FirstName.String(),
		LastName:  raw.LastName.String(),
		Email:     raw.Email.String(),
		Phone:     raw.Phone.String(),
		City:      raw.City.String(),
		Country:   raw.Country.String(),
	}
	return nil
}

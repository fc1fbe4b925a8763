package models

import (
	"encoding/json"
	"strings"
)

// ServiceOffering is an entry of a professional's service list.
type ServiceOffering struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price,omitempty"`
}

// ProfessionalRecord is the provider profile.
type ProfessionalRecord struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId,omitempty"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	ProfessionID string            `json:"professionId,omitempty"`
	Profession   string            `json:"profession,omitempty"`
	Address      string            `json:"address,omitempty"`
	City         string            `json:"city,omitempty"`
	State        string            `json:"state,omitempty"`
	Country      string            `json:"country,omitempty"`
	HourlyPrice  float64           `json:"hourlyPrice"`
	Bio          string            `json:"bio,omitempty"`
	Experience   string            `json:"experience,omitempty"`
	Services     []ServiceOffering `json:"services,omitempty"`
}

func (p ProfessionalRecord) FullName() string {
	return joinNonEmpty(" ", p.FirstName, p.LastName)
}

func (p ProfessionalRecord) Location() string {
	return joinNonEmpty(", ", p.City, p.State, p.Country)
}

// ServiceName returns the name of the offering with the given id.
func (p ProfessionalRecord) ServiceName(id string) (string, bool) {
	for _, s := range p.Services {
		if s.ID == id && strings.TrimSpace(s.Name) != "" {
			return strings.TrimSpace(s.Name), true
		}
	}
	return "", false
}

func (p *ProfessionalRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           LooseString `json:"id"`
		DocumentID   LooseString `json:"_id"`
		UserID       LooseString `json:"userId"`
		FirstName    LooseString `json:"firstName"`
		LastName     LooseString `json:"lastName"`
		ProfessionID LooseString `json:"professionId"`
		Profession   LooseString `json:"profession"`
		Address      LooseString `json:"address"`
		City         LooseString `json:"city"`
		State        LooseString `json:"state"`
		Country      LooseString `json:"country"`
		HourlyPrice  LooseFloat  `json:"hourlyPrice"`
		Bio          LooseString `json:"bio"`
		Experience   LooseString `json:"experience"`
		Services     []struct {
			ID    LooseString `json:"id"`
			Name  LooseString `json:"name"`
			Price LooseFloat  `json:"price"`
		} `json:"services"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = ProfessionalRecord{
		ID:           firstNonEmpty(raw.ID.String(), raw.DocumentID.String()),
		UserID:       raw.UserID.String(),
		FirstName:    raw.FirstName.String(),
		LastName:     raw.LastName.String(),
		ProfessionID: raw.ProfessionID.String(),
		Profession:   raw.Profession.String(),
		Address:      raw.Address.String(),
		City:         raw.City.String(),
		State:        raw.State.String(),
		Country:      raw.Country.String(),
		HourlyPrice:  float64(raw.HourlyPrice),
		Bio:          string(raw.Bio),
		Experience:   raw.Experience.String(),
	}
	for _, s := range raw.Services {
		p.Services = append(p.Services, ServiceOffering{
			ID:    s.ID.String(),
			Name:  s.Name.String(),
			Price: float64(s.Price),
		})
	}
	return nil
}

package models

import (
	"encoding/json"
	"math"
	"time"
)

// ReviewRecord is a stored review of a professional by a client.
type ReviewRecord struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professionalId"`
	ClientID       string    `json:"clientId"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

func (r *ReviewRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             LooseString `json:"id"`
		DocumentID     LooseString `json:"_id"`
		ProfessionalID LooseString `json:"professionalId"`
		ClientID       LooseString `json:"clientId"`
		Rating         LooseFloat  `json:"rating"`
		Comment        LooseString `json:"comment"`
		CreatedAt      LooseString `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ReviewRecord{
		ID:             firstNonEmpty(raw.ID.String(), raw.DocumentID.String()),
		ProfessionalID: raw.ProfessionalID.String(),
		ClientID:       raw.ClientID.String(),
		Rating:         int(math.Round(float64(raw.Rating))),
		Comment:        string(raw.Comment),
	}
	if ts := raw.CreatedAt.String(); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			r.CreatedAt = parsed
		}
	}
	return nil
}

// ReviewDraft is a review as submitted by a caller, before validation.
type ReviewDraft struct {
	ID             string `json:"id,omitempty"`
	ProfessionalID string `json:"professionalId"`
	ClientID       string `json:"clientId"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}

package models

import (
	"encoding/json"
	"strings"
)

// AppointmentRecord is one (professional, date, time) slot as stored by the backend.
// An empty ClientID means the slot is still open.
type AppointmentRecord struct {
	ID             string  `json:"id"`
	ProfessionalID string  `json:"professionalId"`
	ClientID       string  `json:"clientId,omitempty"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Note           string  `json:"note,omitempty"`
	RatingValue    string  `json:"ratingValue,omitempty"`
	ServiceTypeID  *string `json:"serviceTypeId,omitempty"`
	PaymentID      string  `json:"paymentId,omitempty"`
}

// IsClaimed reports whether a client is attached to the slot.
func (a AppointmentRecord) IsClaimed() bool {
	return strings.TrimSpace(a.ClientID) != ""
}

// UnmarshalJSON accepts the loosely typed backend shape: ids and values may
// arrive as strings, numbers or null, and the id may be keyed as "_id".
func (a *AppointmentRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             LooseString  `json:"id"`
		DocumentID     LooseString  `json:"_id"`
		ProfessionalID LooseString  `json:"professionalId"`
		ClientID       LooseString  `json:"clientId"`
		Date           LooseString  `json:"date"`
		Time           LooseString  `json:"time"`
		Note           LooseString  `json:"note"`
		RatingValue    LooseString  `json:"ratingValue"`
		ServiceTypeID  *LooseString `json:"serviceTypeId"`
		PaymentID      LooseString  `json:"paymentId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = AppointmentRecord{
		ID:             firstNonEmpty(raw.ID.String(), raw.DocumentID.String()),
		ProfessionalID: raw.ProfessionalID.String(),
		ClientID:       raw.ClientID.String(),
		Date:           raw.Date.String(),
		Time:           raw.Time.String(),
		Note:           string(raw.Note),
		RatingValue:    raw.RatingValue.String(),
		PaymentID:      raw.PaymentID.String(),
	}
	if raw.ServiceTypeID != nil {
		if id := raw.ServiceTypeID.String(); id != "" {
			a.ServiceTypeID = &id
		}
	}
	return nil
}

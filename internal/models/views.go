package models

// LifecycleState is the derived lifecycle of an appointment.
type LifecycleState string

const (
	StateOpen      LifecycleState = "open"
	StateConfirmed LifecycleState = "confirmed"
	StatePending   LifecycleState = "pending"
	StateCompleted LifecycleState = "completed"
)

// EligibilityDecision is the outcome of a review eligibility check.
type EligibilityDecision string

const (
	Eligible         EligibilityDecision = "eligible"
	NotAClient       EligibilityDecision = "not_a_client"
	NoPastEngagement EligibilityDecision = "no_past_engagement"
	AlreadyReviewed  EligibilityDecision = "already_reviewed"
)

// Role is the viewer's role relative to the marketplace.
type Role string

const (
	RoleUnknown      Role = "unknown"
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
)

// Viewer identifies who a view is computed for.
type Viewer struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	// ProfessionalID is set when Role is RoleProfessional.
	ProfessionalID string `json:"professionalId,omitempty"`
}

// BookingView is the display-ready projection of an appointment.
type BookingView struct {
	ID                   string         `json:"id"`
	CounterpartyName     string         `json:"counterpartyName"`
	CounterpartyLocation string         `json:"counterpartyLocation"`
	CounterpartyPrice    float64        `json:"counterpartyPrice"`
	Date                 string         `json:"date"`
	Time                 string         `json:"time"`
	ServiceLabel         string         `json:"serviceLabel"`
	State                LifecycleState `json:"state"`
}

// SlotView is a bookable time on a given day.
type SlotView struct {
	AppointmentID string `json:"appointmentId"`
	Time          string `json:"time"`
}

// DaySlots groups the open times of one date.
type DaySlots struct {
	Date  string     `json:"date"`
	Slots []SlotView `json:"slots"`
}

// ClientStats is the client dashboard summary. Cancelled is always 0:
// appointments carry no cancellation state.
type ClientStats struct {
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// ProfessionalStats is the professional dashboard summary.
type ProfessionalStats struct {
	TotalBookings      int     `json:"totalBookings"`
	MonthlyEarnings    float64 `json:"monthlyEarnings"`
	AverageRating      float64 `json:"averageRating"`
	TotalReviews       int     `json:"totalReviews"`
	PendingCount       int     `json:"pendingCount"`
	CompletedThisMonth int     `json:"completedThisMonth"`
}

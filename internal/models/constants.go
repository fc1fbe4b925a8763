package models

const (
	// DateFormat is the calendar date layout used by appointment records.
	DateFormat = "2006-01-02"
	// TimeFormat is the wall-clock layout used by appointment records.
	TimeFormat = "15:04"
)

const (
	PlaceholderProfessional = "Professional"
	PlaceholderClient       = "Client"
	PlaceholderLocation     = "No location"
	GenericServiceLabel     = "General service"
)

const (
	MinRating = 1
	MaxRating = 5
)

const (
	// DefaultLookupTimeoutMs bounds a single per-id lookup.
	DefaultLookupTimeoutMs = 3000
	// DefaultLookupConcurrency caps in-flight lookups per fan-out.
	DefaultLookupConcurrency = 8
	// DefaultCacheTTLSeconds is how long resolved lookups stay cached.
	DefaultCacheTTLSeconds = 5 * 60
	// DefaultBackendTimeoutSeconds bounds a single backend request.
	DefaultBackendTimeoutSeconds = 10
)

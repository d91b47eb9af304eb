package authsdk

// ============================================================================
// Envelope
// ============================================================================

// Response statuses carried by every envelope.
const (
	StatusSuccess   = "success"
	StatusRejected  = "rejected"
	StatusException = "exception"
)

// Response is the envelope every credentials endpoint answers with.
type Response struct {
	// Status is one of StatusSuccess, StatusRejected or StatusException
	Status string `json:"status"`

	// Message is a human-readable summary
	Message string `json:"message,omitempty"`

	// Data is the action's payload, if any
	Data any `json:"data,omitempty" swaggertype:"object"`

	// URL is the request path that produced the response
	URL string `json:"url"`

	// Cause lists validation violations for exception responses
	Cause []string `json:"cause,omitempty"`
}

// ============================================================================
// Credentials Requests
// ============================================================================

// RegisterRequest creates an identity with a password.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"hunter2"`
}

// LoginRequest logs the session in.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"hunter2"`
}

// UpdateEmailRequest changes the address of the logged in identity.
type UpdateEmailRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"hunter2"`
	Email    string `json:"email" example:"alice@example.org"`
}

// UpdatePasswordRequest replaces the password of the logged in identity.
type UpdatePasswordRequest struct {
	Username    string `json:"username" example:"alice"`
	Password    string `json:"password" example:"hunter2"`
	NewPassword string `json:"newPassword" example:"correct-horse"`
}

// DeleteAccountRequest removes the logged in identity.
type DeleteAccountRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"hunter2"`
}

// ResendConfirmationRequest asks for a new confirmation email.
type ResendConfirmationRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

// ============================================================================
// Credentials Payloads
// ============================================================================

// User is the public view of an identity.
type User struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

// RegisterData is returned by a successful registration. ConfirmationURL is
// only filled in when the server is configured to expose it.
type RegisterData struct {
	User
	ConfirmationURL string `json:"confirmationUrl,omitempty"`
}

// StatusData describes the caller's session.
type StatusData struct {
	LoggedIn bool  `json:"logged_in"`
	User     *User `json:"user,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}

package auth

type contextKey string

// IdentityContextKey carries the *Identity attached by the session
// middleware.
const IdentityContextKey contextKey = "wakegate.identity"

// Identity is what the route guard attaches to a request once the session
// token resolved to a stored credential.
type Identity struct {
	Username   string `json:"username"`
	OTPEnabled bool   `json:"otp_enabled"`
}

// Enrollment carries a freshly generated TOTP secret and the provisioning
// URI the caller renders as a QR code.
type Enrollment struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

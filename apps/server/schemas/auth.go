package schemas

// AuthResponse is the envelope for register, login and verify.
type AuthResponse struct {
	Message string `json:"message" doc:"Human-readable outcome"`
	Token   string `json:"token,omitempty" doc:"Bearer token for subsequent requests"`
	User    User   `json:"user"`
}

// LoginRequest is the local-login body.
type LoginRequest struct {
	Email    string `json:"email" format:"email" doc:"Account email"`
	Password string `json:"password" doc:"Account password"`
}

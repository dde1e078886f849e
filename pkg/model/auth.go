package model

// LoginRequest is the body for the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued credentials. ExpiresIn is in seconds;
// the client converts it to an absolute expiry at receipt time.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         *User  `json:"user"`
}

// LogoutRequest carries the token to invalidate.
type LogoutRequest struct {
	Token string `json:"token"`
}

// RefreshRequest exchanges a refresh token for fresh credentials. Only used
// with the "exchange" refresh strategy; the default strategy revalidates the
// access token instead.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

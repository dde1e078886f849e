package model

// ErrorResponse is the JSON body the banking API returns for non-2xx
// responses. Code is a short machine-readable identifier; Message is the
// human-readable text surfaced to the user when nothing better applies.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

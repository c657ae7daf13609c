package models

// ErrorResponse is the uniform error envelope returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

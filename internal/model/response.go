package model

type ErrorResponse struct {
	Error *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterResponse struct {
	Message string   `json:"message"`
	User    AuthUser `json:"user"`
}

type BookResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

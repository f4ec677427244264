package model

// Response is the envelope of every API response.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type TokenResponse struct {
	Message string    `json:"message"`
	Data    TokenPair `json:"data"`
}

type UserEnvelope struct {
	Message string       `json:"message"`
	Data    UserResponse `json:"data"`
}

type PermissionResponse struct {
	Message string     `json:"message"`
	Data    Permission `json:"data"`
}

type BookListResponse struct {
	Message string `json:"message"`
	Data    []Book `json:"data"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

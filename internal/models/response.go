package models

// APIResponse is a generic API response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}

// NewRecoverableErrorResponse creates an error response that carries data the
// client needs to retry the operation (e.g. the message text that failed to
// send, so the input field can be restored).
func NewRecoverableErrorResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
		Data:    data,
	}
}

// NewValidationErrorResponse creates a validation error response
func NewValidationErrorResponse(errors map[string]string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   "Validation failed",
		Errors:  errors,
	}
}

// UploadResponse is returned after a successful object upload.
type UploadResponse struct {
	FileID string `json:"file_id"`
	URL    string `json:"url"`
}

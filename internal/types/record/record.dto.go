package record

// ActionRequest is the envelope of every POST to the tracker endpoint. The
// action field selects the operation; the remaining fields are per-action.
type ActionRequest struct {
	Action    string `json:"action"`
	Date      string `json:"date"`
	Gardener  string `json:"gardener"`
	Watered   bool   `json:"watered"`
	Notes     string `json:"notes"`
	WeekStart string `json:"weekStart"`
}

// ActionResponse mirrors the JSON envelope the frontend expects: a success
// flag plus either a message or an error.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListResponse is the getRecords envelope. Records is always present, even
// when the window is empty.
type ListResponse struct {
	Success bool             `json:"success"`
	Records []WateringRecord `json:"records"`
	Error   string           `json:"error,omitempty"`
}

// Ok builds a success response with a human message.
func Ok(message string) ActionResponse {
	return ActionResponse{Success: true, Message: message}
}

// Fail builds a structured error response.
func Fail(err string) ActionResponse {
	return ActionResponse{Success: false, Error: err}
}

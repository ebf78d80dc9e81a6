package response

// StandardApiResponse is the envelope every handler responds with.
// Status is "success" or "error"; Data carries the success payload and
// Errors the validation or failure details.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

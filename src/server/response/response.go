package response

type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

package request

type Import struct {
	// Mints to add to the tracked set before the run, optional
	Mints []string `json:"mints"`
}

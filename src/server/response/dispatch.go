package response

type Dispatch struct {
	Success      bool `json:"success"`
	Received     int  `json:"received"`
	Enqueued     int  `json:"enqueued"`
	Deduplicated int  `json:"deduplicated"`
	Failed       int  `json:"failed"`
	Skipped      int  `json:"skipped"`
}

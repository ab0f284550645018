package report

type Report struct {
	Run     *RunReport     `json:"run,omitempty"`
	Tracker *TrackerReport `json:"tracker,omitempty"`
}

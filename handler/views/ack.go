package views

// Ack confirms a state changing request. Code is always zero; failures are
// rendered as errors instead.
type Ack struct {
	Code   int    `json:"code"`
	Action string `json:"action"`
}

func Done(action string) Ack {
	return Ack{Action: action}
}

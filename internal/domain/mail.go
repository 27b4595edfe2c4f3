package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type BookingWindowMailData struct {
	SittingName string `json:"sittingName"`
	ServiceDate string `json:"serviceDate"`
	At          string `json:"at"`
}

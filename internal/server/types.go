package server

// Event is serialised as JSON and pushed over the GET /events SSE stream.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// webhookResponse is returned with 202 Accepted once an analysis has been
// handed to the notification channels.
type webhookResponse struct {
	Status  string `json:"status"`
	Project string `json:"project"`
	Channel string `json:"channel"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing   Action = "ping"
	ActionSubmit Action = "submit"
)

// RequestPayload carries every client message; Action selects the meaning.
type RequestPayload struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick      Event = "tick"
	EventCompleted Event = "completed"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// TickResponse announces the remaining budget.
type TickResponse struct {
	Event            Event   `json:"event"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// CompletedResponse closes the countdown: the session was submitted, either
// by the client or by the server at zero.
type CompletedResponse struct {
	Event        Event   `json:"event"`
	ScorePercent float64 `json:"score_percent"`
	Passed       bool    `json:"passed"`
	Forced       bool    `json:"forced"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

package reports

// Request is the payload the bot queues for the reporter worker.
type Request struct {
	UserID int64 `json:"user_id"`
}

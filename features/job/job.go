// Package job records ingestions that failed after being queued so they can
// be inspected and requeued.
package job

import (
	"encoding/json"
	"time"
)

type Job struct {
	ID        string          `json:"id"`
	VideoID   string          `json:"video_id"`
	Handler   string          `json:"handler"`
	Payload   json.RawMessage `json:"payload"`
	ErrorCode string          `json:"error_code"`
	Error     string          `json:"error"`
	Retries   int             `json:"retries"`
	CreatedAt time.Time       `json:"created_at"`
}

package worker

// IngestTaskPayload is the message body on the ingest.task topic. It mirrors
// the HTTP ingest request so a queued task and an API call run the same
// pipeline.
type IngestTaskPayload struct {
	URL       string `json:"url"`
	Language  string `json:"language,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
}

package config

const (
	// TopicIngestTask is the NSQ topic for queued ingestion requests.
	TopicIngestTask = "ingest.task"

	// TopicIngestResult is the NSQ topic for ingestion results (success/failure).
	TopicIngestResult = "ingest.result"
)

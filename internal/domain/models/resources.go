package models

// ResourceConfig holds the resolved physical addresses of the pipeline resources.
type ResourceConfig struct {
	QueueURL      string `json:"queue_url"`
	TopicARN      string `json:"topic_arn"`
	TableName     string `json:"table_name"`
	ArchiveBucket string `json:"archive_bucket"`
	FunctionName  string `json:"function_name"`
}

package store

// Setting keys read by the ingestion and retention pipelines.
const (
	KeyMaxItemSizeMB   = "max_item_size_mb"
	KeyRetentionPolicy = "retention_policy"
	KeyRetentionDays   = "retention_days"
	KeyRetentionCount  = "retention_count"
)

// Retention policy setting values.
const (
	PolicyUnlimited = "unlimited"
	PolicyDays      = "days"
	PolicyCount     = "count"
)

// DefaultSettings are seeded into a new store. Existing values are never
// overwritten.
var DefaultSettings = map[string]string{
	KeyMaxItemSizeMB:   "10",
	KeyRetentionPolicy: PolicyUnlimited,
	KeyRetentionDays:   "30",
	KeyRetentionCount:  "1000",
}

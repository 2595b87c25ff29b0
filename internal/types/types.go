// Package types provides shared type definitions used across dictate.
package types

// ArchiveConfig holds S3-compatible storage settings for finished recordings.
type ArchiveConfig struct {
	Endpoint        string `json:"endpoint,omitempty" validate:"omitempty,url"` // Custom S3 endpoint (empty for AWS)
	Region          string `json:"region,omitempty"`                            // Bucket region (empty = "auto")
	Bucket          string `json:"bucket,omitempty"`                            // S3 bucket name
	Prefix          string `json:"prefix,omitempty"`                            // Key prefix inside the bucket
	AccessKeyID     string `json:"access_key_id,omitempty"`                     // Access key ID
	SecretAccessKey string `json:"secret_access_key,omitempty"`                 // Secret access key
}

// IsConfigured reports whether uploads can be attempted.
func (c *ArchiveConfig) IsConfigured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

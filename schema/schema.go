// Package schema has configs, models and constants for all parts of repopulse.
package schema

import "time"

// PullRequestRecord is a pull request reduced to its lifecycle timestamps.
// Reviews holds the submission times of reviews by trusted reviewers only.
type PullRequestRecord struct {
	ID      int64       `json:"id"`
	Opened  time.Time   `json:"opened"`
	Closed  *time.Time  `json:"closed,omitempty"` // nil means still open
	Merged  *time.Time  `json:"merged,omitempty"` // nil means never merged
	Reviews []time.Time `json:"reviews,omitempty"`
}

// IssueRecord is an issue with its classification flags snapshotted from labels.
type IssueRecord struct {
	ID         int64      `json:"id"`
	Opened     time.Time  `json:"opened"`
	Closed     *time.Time `json:"closed,omitempty"`
	FeatureA   bool       `json:"feature_a,omitempty"`
	FeatureB   bool       `json:"feature_b,omitempty"`
	FeatureC   bool       `json:"feature_c,omitempty"`
	Resolution bool       `json:"resolution,omitempty"`
	Defect     bool       `json:"defect,omitempty"`
}

// VideoReviewRecord is a curated video review. A nil UploadDate means the
// video is still pending upload.
type VideoReviewRecord struct {
	ReviewDate time.Time  `json:"review_date" yaml:"review_date"`
	UploadDate *time.Time `json:"upload_date,omitempty" yaml:"upload_date,omitempty"`
}

// RecordSet is the closed, immutable input handed to the timeline engine.
type RecordSet struct {
	PullRequests []PullRequestRecord `json:"pull_requests"`
	Issues       []IssueRecord       `json:"issues"`
	Videos       []VideoReviewRecord `json:"videos"`
}

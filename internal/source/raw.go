package source

import (
	"encoding/json"
	"fmt"
	"os"
)

// RawLabel is one label attached to a node.
type RawLabel struct {
	Name string `json:"name"`
}

// RawLabels is a paginated label connection.
type RawLabels struct {
	TotalCount int        `json:"totalCount"`
	Nodes      []RawLabel `json:"nodes"`
}

// RawAuthor is the author of a review. It is null for deleted accounts.
type RawAuthor struct {
	Login string `json:"login"`
}

// RawReview is one submitted review.
type RawReview struct {
	Author      *RawAuthor `json:"author"`
	SubmittedAt string     `json:"submittedAt"`
}

// RawReviews is a paginated review connection.
type RawReviews struct {
	TotalCount int         `json:"totalCount"`
	Nodes      []RawReview `json:"nodes"`
}

// RawPRNode is a pull request as saved by the fetcher.
type RawPRNode struct {
	ID        int64      `json:"id"`
	CreatedAt string     `json:"createdAt"`
	ClosedAt  *string    `json:"closedAt"`
	MergedAt  *string    `json:"mergedAt"`
	Labels    RawLabels  `json:"labels"`
	Reviews   RawReviews `json:"reviews"`
}

// RawIssueNode is an issue as saved by the fetcher.
type RawIssueNode struct {
	ID        int64     `json:"id"`
	CreatedAt string    `json:"createdAt"`
	ClosedAt  *string   `json:"closedAt"`
	Labels    RawLabels `json:"labels"`
}

// RawNodes is the saved result of one fetch.
type RawNodes struct {
	PRNodes    []RawPRNode    `json:"pr_nodes"`
	IssueNodes []RawIssueNode `json:"issue_nodes"`
}

// ReadRawNodes decodes a saved fetch result.
func ReadRawNodes(path string) (*RawNodes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	var nodes RawNodes
	if err := json.NewDecoder(f).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &nodes, nil
}

// names returns the label names of a connection.
func (l RawLabels) names() []string {
	out := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		out[i] = n.Name
	}
	return out
}

package source

import (
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

// WarnFunc reports a non-fatal problem with the input.
type WarnFunc func(msg string, err error)

// warnIfPaginationNeeded inspects the node with the largest total count of
// a connection and warns when fewer inner nodes were retrieved.
func warnIfPaginationNeeded[N any](nodes []N, id func(N) int64, count func(N) (retrieved, total int), what, kind string, warn WarnFunc) {
	if len(nodes) == 0 {
		return
	}
	maxNode := nodes[0]
	_, maxTotal := count(maxNode)
	for _, n := range nodes[1:] {
		if _, total := count(n); total > maxTotal {
			maxNode, maxTotal = n, total
		}
	}
	if retrieved, total := count(maxNode); retrieved < total {
		warn("pagination", fmt.Errorf("retrieved %d/%d %s for %s #%d", retrieved, total, what, kind, id(maxNode)))
	}
}

// parseNodeTime parses an upstream ISO8601 timestamp into loc.
func parseNodeTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

func parseOptionalNodeTime(s *string, loc *time.Location) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseNodeTime(*s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TransformPRs drops out-of-scope pull requests and converts the rest.
// Reviews are kept only when reviewers is non-nil and the author is a
// maintainer. Deleted authors are skipped.
func TransformPRs(nodes []RawPRNode, labels contract.Labels, reviewers *Reviewers, loc *time.Location, warn WarnFunc) ([]schema.PullRequestRecord, error) {
	prID := func(n RawPRNode) int64 { return n.ID }
	warnIfPaginationNeeded(nodes, prID, func(n RawPRNode) (int, int) {
		return len(n.Labels.Nodes), n.Labels.TotalCount
	}, "labels", "PR", warn)
	warnIfPaginationNeeded(nodes, prID, func(n RawPRNode) (int, int) {
		return len(n.Reviews.Nodes), n.Reviews.TotalCount
	}, "reviews", "PR", warn)

	prs := make([]schema.PullRequestRecord, 0, len(nodes))
	for _, n := range nodes {
		if slices.Contains(n.Labels.names(), labels.OutOfScope) {
			continue
		}

		opened, err := parseNodeTime(n.CreatedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("PR #%d createdAt: %w", n.ID, err)
		}
		closed, err := parseOptionalNodeTime(n.ClosedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("PR #%d closedAt: %w", n.ID, err)
		}
		merged, err := parseOptionalNodeTime(n.MergedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("PR #%d mergedAt: %w", n.ID, err)
		}

		pr := schema.PullRequestRecord{ID: n.ID, Opened: opened, Closed: closed, Merged: merged}
		if reviewers != nil {
			for _, review := range n.Reviews.Nodes {
				if review.Author == nil || !reviewers.IsMaintainer(review.Author.Login, n.ID, warn) {
					continue
				}
				at, err := parseNodeTime(review.SubmittedAt, loc)
				if err != nil {
					return nil, fmt.Errorf("PR #%d review: %w", n.ID, err)
				}
				pr.Reviews = append(pr.Reviews, at)
			}
		}
		prs = append(prs, pr)
	}
	return prs, nil
}

// TransformIssues drops out-of-scope issues and snapshots the
// classification flags of the rest.
func TransformIssues(nodes []RawIssueNode, labels contract.Labels, loc *time.Location, warn WarnFunc) ([]schema.IssueRecord, error) {
	warnIfPaginationNeeded(nodes, func(n RawIssueNode) int64 { return n.ID }, func(n RawIssueNode) (int, int) {
		return len(n.Labels.Nodes), n.Labels.TotalCount
	}, "labels", "issue", warn)

	issues := make([]schema.IssueRecord, 0, len(nodes))
	for _, n := range nodes {
		names := n.Labels.names()
		if slices.Contains(names, labels.OutOfScope) {
			continue
		}

		opened, err := parseNodeTime(n.CreatedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("issue #%d createdAt: %w", n.ID, err)
		}
		closed, err := parseOptionalNodeTime(n.ClosedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("issue #%d closedAt: %w", n.ID, err)
		}

		issues = append(issues, classify(schema.IssueRecord{ID: n.ID, Opened: opened, Closed: closed}, names, labels))
	}
	return issues, nil
}

// classify sets the label flags of an issue.
func classify(issue schema.IssueRecord, names []string, labels contract.Labels) schema.IssueRecord {
	has := func(label string) bool { return slices.Contains(names, label) }

	issue.FeatureA = has(labels.FeatureA)
	issue.FeatureB = has(labels.FeatureB)
	issue.FeatureC = has(labels.FeatureC)
	issue.Resolution = has(labels.Resolution) && !slices.ContainsFunc(labels.ResolutionExclusions, has)
	issue.Defect = has(labels.Defect)
	return issue
}

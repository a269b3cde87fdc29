// Package timeline turns interval records into a dense daily table with a
// single sweep over their lifecycle events.
package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/repopulse/core/algo"
	"github.com/huangsam/repopulse/schema"
)

// ErrInvalidInterval is returned for a record that ends before it starts.
var ErrInvalidInterval = errors.New("interval ends before it starts")

// Kind is the type of a lifecycle event.
type Kind uint8

// Lifecycle event kinds.
const (
	PROpen Kind = iota
	PRClose
	PRReview
	MergeStart
	MergeEnd
	IssueDelta
	VideoDelta
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case PROpen:
		return "pr-open"
	case PRClose:
		return "pr-close"
	case PRReview:
		return "pr-review"
	case MergeStart:
		return "merge-start"
	case MergeEnd:
		return "merge-end"
	case IssueDelta:
		return "issue"
	case VideoDelta:
		return "video"
	default:
		return "unknown"
	}
}

// Event is one state change at a point in time. Stamp carries the opening,
// review or merge time for PR events. Bucket and Defect are only meaningful
// for issue events, Delta for issue and video events.
type Event struct {
	At     time.Time
	Kind   Kind
	ID     int64
	Stamp  time.Time
	Bucket schema.Bucket
	Defect bool
	Delta  int
}

// Extract derives the lifecycle events of every record, in record order.
// Records are not modified.
func Extract(set *schema.RecordSet) ([]Event, error) {
	if set == nil {
		return nil, nil
	}

	events := make([]Event, 0, 4*len(set.PullRequests)+2*len(set.Issues)+2*len(set.Videos))

	for _, pr := range set.PullRequests {
		if pr.Closed != nil && pr.Closed.Before(pr.Opened) {
			return nil, fmt.Errorf("pull request %d closed before it opened: %w", pr.ID, ErrInvalidInterval)
		}
		if pr.Merged != nil && pr.Merged.Before(pr.Opened) {
			return nil, fmt.Errorf("pull request %d merged before it opened: %w", pr.ID, ErrInvalidInterval)
		}
		events = appendPullRequest(events, pr)
	}

	for _, issue := range set.Issues {
		if issue.Closed != nil && issue.Closed.Before(issue.Opened) {
			return nil, fmt.Errorf("issue %d closed before it opened: %w", issue.ID, ErrInvalidInterval)
		}
		bucket := ResolveBucket(issue)
		defect := bucket == schema.GenericBucket && issue.Defect
		events = append(events, Event{At: issue.Opened, Kind: IssueDelta, ID: issue.ID, Bucket: bucket, Defect: defect, Delta: +1})
		if issue.Closed != nil {
			events = append(events, Event{At: *issue.Closed, Kind: IssueDelta, ID: issue.ID, Bucket: bucket, Defect: defect, Delta: -1})
		}
	}

	for i, video := range set.Videos {
		if video.UploadDate != nil && video.UploadDate.Before(video.ReviewDate) {
			return nil, fmt.Errorf("video review %d uploaded before it was reviewed: %w", i, ErrInvalidInterval)
		}
		events = append(events, Event{At: video.ReviewDate, Kind: VideoDelta, ID: int64(i), Delta: +1})
		if video.UploadDate != nil {
			events = append(events, Event{At: *video.UploadDate, Kind: VideoDelta, ID: int64(i), Delta: -1})
		}
	}

	return events, nil
}

func appendPullRequest(events []Event, pr schema.PullRequestRecord) []Event {
	events = append(events, Event{At: pr.Opened, Kind: PROpen, ID: pr.ID, Stamp: pr.Opened})
	if pr.Closed != nil {
		events = append(events, Event{At: *pr.Closed, Kind: PRClose, ID: pr.ID})
	}
	for _, review := range pr.Reviews {
		if !review.After(pr.Opened) {
			continue
		}
		if pr.Closed != nil && !review.Before(*pr.Closed) {
			continue
		}
		events = append(events, Event{At: review, Kind: PRReview, ID: pr.ID, Stamp: review})
	}
	if pr.Merged != nil {
		events = append(events,
			Event{At: *pr.Merged, Kind: MergeStart, ID: pr.ID, Stamp: *pr.Merged},
			Event{At: pr.Merged.Add(algo.Window()), Kind: MergeEnd, ID: pr.ID, Stamp: *pr.Merged},
		)
	}
	return events
}

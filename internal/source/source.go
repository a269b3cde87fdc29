// Package source loads interval records from a saved fetch result, the
// reviewer username lists and the video table.
package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

// FileSource implements RecordSource over files on disk.
type FileSource struct {
	InputPath        string
	VideosPath       string
	MaintainersPath  string
	ContributorsPath string
	Labels           contract.Labels
	Location         *time.Location
	Warn             WarnFunc
}

var _ contract.RecordSource = &FileSource{} // Compile-time check

// NewFileSource creates a FileSource for the configured inputs.
func NewFileSource(cfg *contract.Config) *FileSource {
	return &FileSource{
		InputPath:        cfg.InputPath,
		VideosPath:       cfg.VideosPath,
		MaintainersPath:  cfg.MaintainersPath,
		ContributorsPath: cfg.ContributorsPath,
		Labels:           cfg.Labels,
		Location:         cfg.Location,
		Warn:             contract.LogWarn,
	}
}

// Fingerprint implements the RecordSource interface. It combines the size
// and modification time of every input file with the label configuration.
func (s *FileSource) Fingerprint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parts := []string{s.Labels.String(), s.location().String()}
	for _, path := range []string{s.InputPath, s.VideosPath, s.MaintainersPath, s.ContributorsPath} {
		if path == "" {
			parts = append(parts, "-")
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano()))
	}
	return strings.Join(parts, "|"), nil
}

// Load implements the RecordSource interface.
func (s *FileSource) Load(ctx context.Context) (*schema.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	warn := s.Warn
	if warn == nil {
		warn = contract.LogWarn
	}
	loc := s.location()

	nodes, err := ReadRawNodes(s.InputPath)
	if err != nil {
		return nil, err
	}

	var reviewers *Reviewers
	if s.MaintainersPath != "" {
		if reviewers, err = ReadReviewers(s.MaintainersPath, s.ContributorsPath, warn); err != nil {
			return nil, err
		}
	}

	prs, err := TransformPRs(nodes.PRNodes, s.Labels, reviewers, loc, warn)
	if err != nil {
		return nil, err
	}
	issues, err := TransformIssues(nodes.IssueNodes, s.Labels, loc, warn)
	if err != nil {
		return nil, err
	}

	var videos []schema.VideoReviewRecord
	if s.VideosPath != "" {
		if videos, err = LoadVideos(s.VideosPath, loc); err != nil {
			return nil, err
		}
	}

	return &schema.RecordSet{PullRequests: prs, Issues: issues, Videos: videos}, nil
}

func (s *FileSource) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

package source

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
	"gopkg.in/yaml.v3"
)

// rawVideo is one entry of the video table file.
type rawVideo struct {
	ReviewDate string `yaml:"review_date"`
	UploadDate string `yaml:"upload_date"`
}

// LoadVideos reads the curated video review table. Dates without a zone
// are read in loc.
func LoadVideos(path string, loc *time.Location) ([]schema.VideoReviewRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read videos: %w", err)
	}

	var raw []rawVideo
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	videos := make([]schema.VideoReviewRecord, 0, len(raw))
	for i, v := range raw {
		review, err := parseVideoDate(v.ReviewDate, loc)
		if err != nil {
			return nil, fmt.Errorf("video %d: review_date: %w", i, err)
		}
		rec := schema.VideoReviewRecord{ReviewDate: review}
		if v.UploadDate != "" {
			upload, err := parseVideoDate(v.UploadDate, loc)
			if err != nil {
				return nil, fmt.Errorf("video %d: upload_date: %w", i, err)
			}
			rec.UploadDate = &upload
		}
		videos = append(videos, rec)
	}
	return videos, nil
}

// parseVideoDate accepts absolute timestamps only.
func parseVideoDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	// Relative expressions resolve against the zero time and fail the year check.
	t, err := contract.ParseTimestamp(s, loc, time.Time{})
	if err != nil || t.Year() < 1970 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

package source

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Reviewers holds the trusted and known reviewer usernames.
// Only maintainer reviews count as feedback.
type Reviewers struct {
	maintainers  map[string]struct{}
	contributors map[string]struct{}
}

// NewReviewers builds reviewer sets from username lists, warning about
// duplicates within a list and maintainers also listed as contributors.
func NewReviewers(maintainers, contributors []string, warn WarnFunc) *Reviewers {
	warnDuplicates(maintainers, func(name string) {
		warn("usernames", fmt.Errorf("duplicate maintainer %q", name))
	})
	warnDuplicates(contributors, func(name string) {
		warn("usernames", fmt.Errorf("duplicate contributor %q", name))
	})

	r := &Reviewers{
		maintainers:  toSet(maintainers),
		contributors: toSet(contributors),
	}
	reported := make(map[string]struct{})
	for _, name := range maintainers {
		if _, seen := reported[name]; seen {
			continue
		}
		if _, ok := r.contributors[name]; ok {
			reported[name] = struct{}{}
			warn("usernames", fmt.Errorf("maintainer %q is also listed as a contributor", name))
		}
	}
	return r
}

// ReadReviewers reads the maintainer and contributor username files.
func ReadReviewers(maintainersPath, contributorsPath string, warn WarnFunc) (*Reviewers, error) {
	maintainers, err := ReadTrimmedLines(maintainersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read maintainers: %w", err)
	}
	var contributors []string
	if contributorsPath != "" {
		if contributors, err = ReadTrimmedLines(contributorsPath); err != nil {
			return nil, fmt.Errorf("failed to read contributors: %w", err)
		}
	}
	return NewReviewers(maintainers, contributors, warn), nil
}

// IsMaintainer reports whether a review by login is trusted feedback.
// Unknown users are remembered as contributors after a single warning.
func (r *Reviewers) IsMaintainer(login string, prID int64, warn WarnFunc) bool {
	if _, ok := r.maintainers[login]; ok {
		return true
	}
	if _, ok := r.contributors[login]; !ok {
		r.contributors[login] = struct{}{}
		warn("reviewers", fmt.Errorf("unknown user %q reviewed PR #%d", login, prID))
	}
	return false
}

// ReadTrimmedLines reads a file's lines, trimming whitespace and skipping
// blanks and lines beginning with '#'.
func ReadTrimmedLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// warnDuplicates reports every repeated element once.
func warnDuplicates(items []string, report func(string)) {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		reported, ok := seen[item]
		if !ok {
			seen[item] = false
		} else if !reported {
			seen[item] = true
			report(item)
		}
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

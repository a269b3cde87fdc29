package schema

// Count returns the value of a count key.
func (r Row) Count(key CountKey) int {
	switch key {
	case PRKey:
		return r.PR
	case FeatureAKey:
		return r.FeatureA
	case FeatureBKey:
		return r.FeatureB
	case FeatureCKey:
		return r.FeatureC
	case ResolutionKey:
		return r.Resolution
	case IssueKey:
		return r.Issue
	case BugKey:
		return r.Bug
	case VideoKey:
		return r.Video
	default:
		return 0
	}
}

// NewDailyRow converts a Row with every count populated.
func NewDailyRow(r Row) DailyRow {
	return DailyRow{
		Date:       r.Date.Format(DateFormat),
		Merged:     r.Merged,
		PR:         intPtr(r.PR),
		FeatureA:   intPtr(r.FeatureA),
		FeatureB:   intPtr(r.FeatureB),
		FeatureC:   intPtr(r.FeatureC),
		Resolution: intPtr(r.Resolution),
		Issue:      intPtr(r.Issue),
		Bug:        intPtr(r.Bug),
		Video:      intPtr(r.Video),
		AvgAge:     r.AvgAge,
		AvgWait:    r.AvgWait,
		SumAge:     r.SumAge,
		SumWait:    r.SumWait,
	}
}

// Count returns the value of a count key, or nil when it was filtered out.
func (d *DailyRow) Count(key CountKey) *int {
	if p := d.field(key); p != nil {
		return *p
	}
	return nil
}

// Clear nulls out a count key.
func (d *DailyRow) Clear(key CountKey) {
	if p := d.field(key); p != nil {
		*p = nil
	}
}

func (d *DailyRow) field(key CountKey) **int {
	switch key {
	case PRKey:
		return &d.PR
	case FeatureAKey:
		return &d.FeatureA
	case FeatureBKey:
		return &d.FeatureB
	case FeatureCKey:
		return &d.FeatureC
	case ResolutionKey:
		return &d.Resolution
	case IssueKey:
		return &d.Issue
	case BugKey:
		return &d.Bug
	case VideoKey:
		return &d.Video
	default:
		return nil
	}
}

func intPtr(v int) *int {
	return &v
}

package timeline

import "github.com/huangsam/repopulse/schema"

// ResolveBucket attributes an issue to exactly one bucket. The first
// matching flag in the order FeatureA, FeatureB, FeatureC, Resolution wins;
// an issue with none of them is Generic.
func ResolveBucket(issue schema.IssueRecord) schema.Bucket {
	switch {
	case issue.FeatureA:
		return schema.FeatureABucket
	case issue.FeatureB:
		return schema.FeatureBBucket
	case issue.FeatureC:
		return schema.FeatureCBucket
	case issue.Resolution:
		return schema.ResolutionBucket
	default:
		return schema.GenericBucket
	}
}

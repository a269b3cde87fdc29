package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// CountKey names a nullable count column of the daily table.
	CountKey string
)

// Bucket is the single reporting bucket an issue is attributed to.
type Bucket uint8

// Buckets in precedence order. Generic is the fallback.
const (
	FeatureABucket Bucket = iota
	FeatureBBucket
	FeatureCBucket
	ResolutionBucket
	GenericBucket
	bucketCount
)

// NumBuckets is the number of issue buckets.
const NumBuckets = int(bucketCount)

// String returns the daily table key of the bucket.
func (b Bucket) String() string {
	switch b {
	case FeatureABucket:
		return string(FeatureAKey)
	case FeatureBBucket:
		return string(FeatureBKey)
	case FeatureCBucket:
		return string(FeatureCKey)
	case ResolutionBucket:
		return string(ResolutionKey)
	case GenericBucket:
		return string(IssueKey)
	default:
		return "unknown"
	}
}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	TSOut      OutputMode = "ts"
	HTMLOut    OutputMode = "html"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Count keys of the daily table. The names match the chart consumer.
const (
	PRKey         CountKey = "pr"
	FeatureAKey   CountKey = "cxx20"
	FeatureBKey   CountKey = "cxx23"
	FeatureCKey   CountKey = "cxx26"
	ResolutionKey CountKey = "lwg"
	IssueKey      CountKey = "issue"
	BugKey        CountKey = "bug"
	VideoKey      CountKey = "video"
)

// CountKeys lists the sparsity-filtered keys in column order.
var CountKeys = []CountKey{PRKey, FeatureAKey, FeatureBKey, FeatureCKey, ResolutionKey, IssueKey, BugKey, VideoKey}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	TSOut:      {},
	HTMLOut:    {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

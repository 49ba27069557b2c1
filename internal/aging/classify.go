package aging

// Bucket classifies an outstanding balance by days past due. The overdue
// buckets partition (0, inf) exactly once: (0,30], (30,60], (60,inf).
type Bucket string

const (
	BucketOnTime Bucket = "onTime"
	Bucket1To30  Bucket = "1-30"
	Bucket31To60 Bucket = "31-60"
	BucketOver60 Bucket = "61+"
)

// Classify maps overdue days to an aging bucket.
func Classify(overdueDays int) Bucket {
	switch {
	case overdueDays <= 0:
		return BucketOnTime
	case overdueDays <= 30:
		return Bucket1To30
	case overdueDays <= 60:
		return Bucket31To60
	default:
		return BucketOver60
	}
}

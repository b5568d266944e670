package model

// Rating classifies an audit or category score.
//
// The thresholds follow the convention used by web performance audit tools:
// a score of 0.9 or more passes, 0.5 or more is average, anything lower fails.
type Rating int

const (
	// RatingUnscored is used when the score is null or missing.
	// Informational and manual audits have no score.
	RatingUnscored Rating = iota

	// RatingFail indicates a score below 0.5.
	RatingFail

	// RatingAverage indicates a score in [0.5, 0.9).
	RatingAverage

	// RatingPass indicates a score of 0.9 or more.
	RatingPass
)

// Score thresholds for ratings.
const (
	PassThreshold    = 0.9
	AverageThreshold = 0.5
)

// String returns a human-readable representation of the rating.
func (r Rating) String() string {
	switch r {
	case RatingUnscored:
		return "n/a"
	case RatingFail:
		return "fail"
	case RatingAverage:
		return "average"
	case RatingPass:
		return "pass"
	default:
		return "unknown"
	}
}

// Symbol returns a short marker for the rating used in reports.
func (r Rating) Symbol() string {
	switch r {
	case RatingFail:
		return "🔴"
	case RatingAverage:
		return "🟠"
	case RatingPass:
		return "🟢"
	default:
		return "⚪"
	}
}

// RatingFor returns the rating of a normalized (0..1) score.
// A nil score is RatingUnscored.
func RatingFor(score *float64) Rating {
	if score == nil {
		return RatingUnscored
	}
	switch {
	case *score >= PassThreshold:
		return RatingPass
	case *score >= AverageThreshold:
		return RatingAverage
	default:
		return RatingFail
	}
}

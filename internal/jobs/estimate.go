package jobs

import (
	"math"

	"audio-digest/internal/domain"
)

const estimateBaseSeconds = 60

// EstimateSeconds predicts wall time for a job before it runs. The
// multipliers are applied to the base, rounded, and the remote-fetch
// surcharge added last.
func EstimateSeconds(source domain.SourceKind, opts domain.ProcessingOptions) int {
	estimate := float64(estimateBaseSeconds)

	switch opts.Detail {
	case domain.DetailBrief:
		estimate *= 0.7
	case domain.DetailDeep:
		estimate *= 1.5
	}

	if opts.Timestamps {
		estimate *= 1.2
	}

	seconds := int(math.Round(estimate))
	if source == domain.SourceURL {
		seconds += 30
	}
	return seconds
}

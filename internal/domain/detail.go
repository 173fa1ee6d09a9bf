package domain

// DetailTargets are the target output cardinalities for one detail level.
// They are targets handed to the summarization service, not hard limits
// enforced on its response.
type DetailTargets struct {
	TakeawaysMin   int
	TakeawaysMax   int
	KeyPointsMin   int
	KeyPointsMax   int
	ActionItemsMin int
	ActionItemsMax int
	Chapters       bool
}

// TargetsFor returns the output targets for a detail level. Unknown
// levels fall back to standard.
func TargetsFor(level DetailLevel) DetailTargets {
	switch level {
	case DetailBrief:
		return DetailTargets{
			TakeawaysMin: 3, TakeawaysMax: 5,
			KeyPointsMin: 5, KeyPointsMax: 8,
			ActionItemsMin: 3, ActionItemsMax: 5,
		}
	case DetailDeep:
		return DetailTargets{
			TakeawaysMin: 7, TakeawaysMax: 10,
			KeyPointsMin: 12, KeyPointsMax: 20,
			ActionItemsMin: 8, ActionItemsMax: 12,
			Chapters: true,
		}
	default:
		return DetailTargets{
			TakeawaysMin: 5, TakeawaysMax: 7,
			KeyPointsMin: 8, KeyPointsMax: 12,
			ActionItemsMin: 5, ActionItemsMax: 8,
		}
	}
}

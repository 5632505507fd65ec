package domain

// RewardTarget is one of the ordered gamification targets on the progress
// scale. Target 1 unlocks at 0 points, target 10 at 98.
type RewardTarget struct {
	ID             int
	Label          string
	RequiredPoints int
	Unlocked       bool
}

// ProgressState is the fully derived progress view for a user. Recomputed on
// every request from the payout record and trading-day count; never stored.
type ProgressState struct {
	CurrentPoints       int
	NextRewardThreshold int
	Targets             []RewardTarget
}

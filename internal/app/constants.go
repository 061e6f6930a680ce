package app

const (
	lootIDPrefix    = "loot-"
	neutralIDPrefix = "vine-"
)

// Defeat causes reported in DefeatPayload.
const (
	CauseAbility = "ability"
	CauseNeutral = "neutral"
)

// epsilon absorbs float drift when fixed tick deltas are summed against whole-second deadlines.
const epsilon = 1e-9

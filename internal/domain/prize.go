package domain

// Prizes maps a passed level to its money amount.
var Prizes = [...]int64{
	100, 200, 300, 500, 1000, 2000, 4000, 8000, 16000, 32000,
	64000, 125000, 250000, 500000, 1000000,
}

// FireproofLevels are checkpoints: once passed, a failure cannot drop the prize below them.
var FireproofLevels = [...]int{4, 9, 14}

// TopPrize is the payout for passing the last level.
func TopPrize() int64 {
	return Prizes[MaxLevel]
}

// Prize returns the amount for a passed level, 0 when no level was passed.
func Prize(passedLevel int) int64 {
	if passedLevel < MinLevel {
		return 0
	}
	if passedLevel > MaxLevel {
		passedLevel = MaxLevel
	}
	return Prizes[passedLevel]
}

// FireproofPrize returns the amount of the highest checkpoint at or below passedLevel.
func FireproofPrize(passedLevel int) int64 {
	prize := int64(0)
	for _, level := range FireproofLevels {
		if level <= passedLevel {
			prize = Prizes[level]
		}
	}
	return prize
}

// IsFireproof reports whether level is a checkpoint.
func IsFireproof(level int) bool {
	for _, l := range FireproofLevels {
		if l == level {
			return true
		}
	}
	return false
}

package calculation

import "time"

// Search timing and unseeded Monte Carlo runs read these; tests pin them.
var (
	nowFunc  = time.Now
	seedFunc = func() int64 { return time.Now().UnixNano() }
)

// SetNowFunc replaces the clock used to time searches.
func SetNowFunc(f func() time.Time) { nowFunc = f }

// SetSeedFunc replaces the seed source used when RunMonteCarloAnalysis gets seed 0.
func SetSeedFunc(f func() int64) { seedFunc = f }

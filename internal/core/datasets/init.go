// Package datasets registers the fleet console datasets with the core
// registry. Import this package to ensure all datasets are registered.
package datasets

import "time"

// This file exists to provide a single import point.
// Each dataset file uses init() to register its dataset.

// now is the clock used by derived columns. Tests replace it.
var now = time.Now

// today returns the UTC midnight of the current day.
func today() time.Time {
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

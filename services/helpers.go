package services

import "time"

// nowFunc is swapped out in tests to freeze completion timestamps.
var nowFunc = time.Now

package stats

import "errors"

var errLoaderMissing = errors.New("stats: counters loader not configured")

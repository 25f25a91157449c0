package jose

import "time"

// Clock is the function used whenever the current time is required,
// i.e. by the lifetime validator and the blocklist garbage collector.
// Override it in tests to get deterministic results.
var Clock = time.Now

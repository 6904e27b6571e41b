package constants

import "time"

// Redis key formats
const (
	KeyVisitorFlow    = "authgate:flow:%s"    // Format: authgate:flow:{visitor_id}
	KeyVisitorSession = "authgate:session:%s" // Format: authgate:session:{visitor_id}
	KeyVisitorJar     = "authgate:jar:%s"     // Format: authgate:jar:{visitor_id}
	KeyVisitorLock    = "authgate:lock:%s"    // Format: authgate:lock:{visitor_id}

	// Rate Limiting
	KeyRateLimit = "rate:limit:%s:%s" // Format: rate:limit:{resource}:{ip}
)

// Visitor lock timing. Backend calls made under the lock are cut off after
// the flow request timeout; the lock outlives them by VisitorLockMargin so
// the snapshot reads and writes around them stay covered.
const (
	DefaultFlowRequestTimeout = 20 * time.Second
	VisitorLockMargin         = 5 * time.Second
)

package cachestore

import "context"

// Run-log event kinds, narrowing ModuleManager.logDebug's free-form event
// strings (internal/core/modules.go) to the fixed vocabulary a cache store
// actually needs.
const (
	EventHit         = "hit"
	EventMiss        = "miss"
	EventSave        = "save"
	EventVersionBump = "version_bump"
)

// LogEvent is a convenience wrapper so callers don't need to know
// run_log's column shape — it just forwards to the open Session.
func LogEvent(ctx context.Context, sess Session, pathName, event, detail string) error {
	return sess.LogEvent(ctx, pathName, event, detail)
}

// Package store defines the persistence interfaces consumed by the rest of
// the application, together with the sentinel errors implementations must
// return and the change-feed contract used by the realtime layer. Concrete
// implementations live under internal/platform.
package store

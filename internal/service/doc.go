// Package service contains the application services sitting between the API
// surfaces (REST and realtime) and the persistence layer: task and user
// lifecycle operations, the notification read-flag mutation, and the
// aggregate query set both surfaces recompute.
package service

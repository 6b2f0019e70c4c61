// Package realtime implements the live fan-out engine: a broker consuming
// the task and notification change feeds once per process and routing each
// event to the subscribers of the affected user, and per-connection
// subscriptions that recompute the relevant aggregate views and push them
// over the websocket.
package realtime

// Package events carries board changes to collaborators that must not be
// part of the change's transaction: the activity log, the redis fan-out and
// anything else registered as a Handler.
//
// The primary components are:
//   - Event: a typed board change with a JSON payload
//   - InMemoryEventEmitter: fans an event out to registered handlers
//   - Dispatcher: queues events and delivers them from a worker pool, so
//     emitting never blocks the caller or reports handler failures back
//   - ActivityLogHandler: writes one structured log line per event
package events

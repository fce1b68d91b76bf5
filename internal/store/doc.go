// Package store defines the persistence interfaces for boards, columns and
// tasks, the unit-of-work abstraction the board engine runs in, and the
// errors every implementation reports. Implementations live under
// internal/platform.
package store

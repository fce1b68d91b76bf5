// Package service contains the application use cases of the board API. It
// runs each board engine operation inside a unit of work, retries the whole
// operation when the store reports a concurrency conflict, and emits a domain
// event once the change has been committed.
//
// The service layer depends on the board engine and the store interfaces, never
// on a concrete storage backend. Delivery mechanisms (the HTTP API and the
// CLI) talk to the BoardService interface only.
package service

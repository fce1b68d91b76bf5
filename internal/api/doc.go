// Package api is the HTTP transport of the board service. Handlers decode and
// validate JSON requests, call service.BoardService and map its errors to
// status codes and client-safe messages. All routes are mounted by NewRouter.
package api

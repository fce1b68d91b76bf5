// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver, and embeds the goose migrations that create the
// schema. Position uniqueness is enforced by deferred unique constraints;
// the shift statements are single relative UPDATEs.
package postgres

// Package internal documents the smartcrowds server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem rendering, and routing
// - domain: business logic and domain models (events, content, lookups)
// - storage: database access and repositories (pgx + Postgres)
// - feeds: sitemap and RSS projections
// - config, metrics, telemetry, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal

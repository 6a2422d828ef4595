// Package gltch provides the GLTCH feed-ranking backend.

// This package contains only documentation. The code is organized into
// subpackages:

// - cmd/server: the API server entry point
// - cmd/seed: development database seeding
// - cmd/cli: command-line client for a running backend
// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/feed: feed sourcing, scoring, and assembly
// - internal/bluesky: AT Protocol XRPC client (feed reads, like writes)
// - internal/store: database-backed stores (engagement, members, hashtags)
// - internal/votes: GLTCH votes with Bluesky like mirroring
// - internal/notifications: in-app notifications
// - internal/models: data models and database schemas
// - internal/auth: token issuing and the auth middleware
// - internal/database: database connection and migrations
// - internal/cache: optional Redis cache
// - internal/middleware: HTTP middleware (request IDs, logging, metrics)

// See the individual package documentation for detailed reference.
package gltch

// Package cache provides a TTL response cache for the health endpoints.
//
// Health probes re-read the credential environment and run every checker on
// each request. Handler serves repeated GET requests from a Cache for the
// Policy TTL instead.
package cache

// Package common contains shared constants and sentinel errors used across
// hradmin components.
package common

// AuthorizationHeader carries the bearer credential on inbound requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix precedes the credential inside AuthorizationHeader.
const BearerPrefix = "Bearer "

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

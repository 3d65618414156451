// Package api implements Sentinel's HTTP API.
//
// Endpoints:
//
//	POST   /v1/validate          screen one name
//	POST   /v1/validate/batch    screen several names
//	GET    /v1/stats             cache and source statistics
//	GET    /v1/sources           configured sources with health
//	POST   /v1/sources/{name}/enable
//	POST   /v1/sources/{name}/disable
//	PUT    /v1/sources/{name}/key
//	DELETE /v1/cache             drop all cached verdicts
//	GET    /healthz              liveness probe
//
// All responses are JSON. Errors use the shape
// {"error": {"type": "...", "message": "..."}}.
package api

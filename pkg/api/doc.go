// Package api exposes the drop simulator over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness probe
//	GET  /version       build information
//	GET  /v1/shapes     the piece table
//	POST /v1/heights    simulate a batch of scenarios
//	POST /v1/board      simulate one scenario and return its board
//
// /v1/heights accepts either a text/plain body with one scenario per line, or
// a JSON body:
//
//	{"scenarios": ["Q0,Q2,Q4", "", "I0,I4,Q8"], "on_invalid": "skip"}
//
// and responds with one height per scenario in request order:
//
//	{"heights": [2, 0, 1], "stats": {...}}
//
// Errors are returned as {"code": "INVALID_TOKEN", "error": "..."} with a
// 4xx or 5xx status derived from the error code.
package api

// Package api handles incoming HTTP requests for the landing data contract:
// routing, request validation, and response formatting. It translates HTTP
// concerns to store queries and background job submissions, keeping caching
// and error sanitization decisions out of the core logic.
package api

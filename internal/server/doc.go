// Package server exposes the upload pipeline over HTTP.
//
// POST /upload accepts a multipart form. Every file part is spooled to a
// temporary file and handed to an upload.Uploader built from the configured
// upload.Config. The response body is the JSON encoded upload.Result, with the
// status code derived from the pipeline error. GET /health reports liveness, or
// readiness when health checks are registered.
package server

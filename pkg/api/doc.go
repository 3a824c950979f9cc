// Package api exposes the REST surface over HTTP. Routing is chi with
// bearer-token authentication, per-project role resolution, and a
// capability gate per subtree (read, upload, manage). Domain sentinel
// errors map onto the status taxonomy in errors.go; analysis submission
// returns 202 and a busy project slot returns 409 BUSY.
package api

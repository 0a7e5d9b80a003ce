// Package health serves the /health endpoint.
//
// A Checker runs named checks concurrently, each bounded by a timeout.
// The service registers a single "inbox" check (DirCheck on the document
// inbox); when it fails the endpoint still answers 200 but reports
//
//	{"status":"degraded","inbox_accessible":false,...}
//
// so orchestration keeps the container running while the volume is fixed.
package health

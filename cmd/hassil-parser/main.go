// hassil-parser expands Home Assistant intent sentence templates into
// concrete patterns and keeps them in a template store.
//
// It downloads the intents repository (or reads a local inbox), expands
// every intent of every domain, upserts the patterns and announces the
// update to subscribers.
//
// Usage:
//
//	# Start the HTTP service with scheduled and on-demand syncs
//	hassil-parser serve --config config.yaml
//
//	# Run one sync and print the report
//	hassil-parser sync --dry-run
//
//	# Expand a single intent file
//	hassil-parser expand --file light.yaml --common _common.yaml
//
//	# Check templates for syntax errors and rule cycles
//	hassil-parser lint --file light.yaml
//
//	# Show version information
//	hassil-parser version
package main

func main() {
	Execute()
}

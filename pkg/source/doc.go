// Package source fetches intent documents.
//
// A Source returns every document of one language as an intents.Batch
// keyed by file stem. Three sources exist:
//
//   - ArchiveSource downloads and unpacks the repository archive with go-getter
//   - GitSource clones or pulls the repository with go-git
//   - DirSource reads a local inbox directory
//
// Files that are not valid YAML mappings are skipped with a warning; only
// an unreachable source is an error, reported as *FetchError.
//
// InboxWatcher watches the inbox with fsnotify and calls back, debounced,
// when YAML files change.
package source

// Package manager coordinates the lifecycle of VPL properties loaded
// from the file system: parsing, validation, atomic registration, and
// hot reload.
//
// A load is all-or-nothing per source: every document is parsed and every
// property validated before the registry is swapped, so a broken edit
// never evicts the last good property set. Hot reload combines an
// fsnotify file watcher with debouncing, plus an optional cron-scheduled
// rescan for changes the watcher cannot see.
package manager

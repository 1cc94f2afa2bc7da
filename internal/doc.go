// Package internal contains the core implementation packages for barrel.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the barrel CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: Source units, directories and aggregator files
//   - config: Configuration loading, validation and compiled settings
//   - errors: Structured errors with codes and file context
//   - logging: Structured logging on charmbracelet/log
//   - source: The file system abstraction every read and write goes through
//   - scanner: File filtering and directory tree scanning
//   - barrel: Building, comparing and recognizing barrel text
//   - generator: Generation, regeneration, batches and change events
//   - inspect: Missing and outdated barrel reports
//   - watcher: File system monitoring with debouncing
//   - version: Build information
//
// # Inter-Package Communication
//
// Data flows in one direction:
//
//   - Scanner lists directories through source and filters units with config
//   - Barrel turns units into text without touching the file system
//   - Generator combines scanner and barrel and writes through source
//   - Watcher translates file system notifications into generator events
//   - Inspect walks trees and asks generator whether barrels are stale
//
// # Testing Strategy
//
// Packages are tested against an in-memory afero file system where
// possible. Property tests run with the property build tag:
//
//	go test -tags property ./...
package internal

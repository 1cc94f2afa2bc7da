// # Available Commands
//
//   - generate: Write a barrel for directories, recursively or from a selection
//   - regenerate: Rewrite existing barrels from their directories
//   - preview: Print what generate would write
//   - check: Report missing and outdated barrels, optionally fixing them
//   - watch: Regenerate stale barrels as files change
//   - init: Write a .barrel.yml configuration file
//   - version: Show build information
//
// # Command Examples
//
//	// Give every directory under lib its own barrel
//	barrel generate --recursive lib
//
//	// One barrel for lib exporting the whole subtree
//	barrel generate --subdirs lib
//
//	// A custom barrel exporting two files
//	barrel generate lib/models --only user.dart,order.dart --name public.dart
//
//	// Fail CI when a barrel is out of date
//	barrel check lib --format json
//
//	// Keep barrels fresh while editing
//	barrel watch lib
package cmd

// Package apply projects a workspace profile onto a folder on disk.
//
// Two entry points exist:
//
//   - ApplyToWorkspace writes each key setting into an existing workspace's
//     .vscode/settings.json and merges the profile's extension ids into
//     .vscode/extensions.json. It is best effort: a failed setting is recorded
//     in the Report and the remaining settings are still written.
//   - ScaffoldWorkspace creates .vscode/settings.json, .vscode/extensions.json
//     and the profile's extra files in a new folder. The first failure aborts.
//
// Existing settings and recommendation files are read as JSONC, so comments
// and trailing commas in hand-edited files do not break an apply. Files are
// written back as plain indented JSON.
package apply

// Package gitsync pulls a policy bundle from a git repository into a local
// directory that then serves as the storage base path.
//
// A synced checkout contains the same policies/ and delegations/ layout the
// storage package reads, including version subdirectories, so pinning a
// branch plus pinning a policy version gives a fully reproducible audit
// setup.
package gitsync

// Package testutil provides test doubles shared across rigup test
// suites: an in-memory types.FS with symlink support and a scripted
// run.Runner that replays canned external-tool results.
package testutil

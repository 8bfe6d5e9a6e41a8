package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "Provision this machine's development environment"
	MsgRootLong  = `rigup provisions a development environment onto this host by running an
ordered list of idempotent steps: package installation with mirror
failover, dotfiles deployment with backup-then-link discipline, shell
profile integration and workspace layout.

Safe to re-run: steps already satisfied are skipped, pre-existing files
are renamed aside with a timestamped .backup suffix, never deleted.`
	MsgVersionShort = "Print version information"

	// Flag descriptions
	MsgFlagAttended = "Prompt before ambiguous or destructive choices (default: run unattended)"

	// Summary messages
	MsgSummaryTitle    = "Provisioning summary"
	MsgSummaryAborted  = "Provisioning aborted."
	MsgSummaryComplete = "Provisioning complete."
	MsgWarningsHeader  = "Warnings:"
	MsgReceiptFailed   = "could not write run receipt: %v"
)

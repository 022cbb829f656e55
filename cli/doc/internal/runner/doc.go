// Package runner turns translated actions into compose invocations and runs
// them, one at a time, through an execx.Executor.
//
// Invoke covers a single call: the compose tool, "-f <file>", the
// sub-action, the target token for exec, then the arguments. Chain runs a
// list of such calls as one operation. It stops at the first failing step
// except for steps marked as cleanup, which always run. Dry-run mode prints
// each command line to stderr instead of executing it, like the rest of the
// CLI does.
package runner

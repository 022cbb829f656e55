// Package launcher runs service setup scripts on any host.
//
// Where a POSIX shell exists the script is handed to it directly. On Windows
// an ordered list of strategies is tried: Git Bash, then WSL, then
// PowerShell driving WSL. Each strategy is a pure function from the request
// to a process invocation, with the script path and path-like arguments
// rewritten into the syntax that provider expects. The first strategy whose
// process starts wins; its exit status is the result. When none can start,
// Run returns a NoProviderError naming the providers and a command the user
// can run by hand.
package launcher

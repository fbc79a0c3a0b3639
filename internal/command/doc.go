// Package command submits device commands to the remote platform with a bounded wait.
//
// A Dispatcher builds a Request from the configured device identity plus the
// caller's command name, service id and parameters, hands it to a Commander
// on a shared Pool, and waits at most the timeout. The result is an Outcome:
//
//	KindSuccess      the platform accepted the command
//	KindTimeout      the deadline passed first (or the transport timed out)
//	KindRemoteError  the platform, or the transport, rejected the command
//	KindRejected     the pool queue was full (only with a MaxPending bound)
//
// A timed-out dispatch is terminal: there is no retry. Work still waiting for
// a pool slot when its deadline passes is skipped; a call already running is
// left to finish on its own.
//
// Thread Safety: Dispatcher and Pool are safe for concurrent use.
package command

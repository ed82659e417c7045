package flare

// DebugMode enables debug logging throughout the flare package.
// When true, operations like TxNamed will log transaction boundaries.
// This should be set at startup and not changed during runtime.
var DebugMode bool

// DefaultMaxUpdateRounds is the initial value of MaxUpdateRounds.
const DefaultMaxUpdateRounds = 100

// MaxUpdateRounds bounds how many scheduler rounds a single write (or
// batch close) may cascade through before propagation is aborted with a
// panic wrapping ErrCycleDetected. Each round runs the computations
// dirtied by the previous round, so a legitimate chain of N dependent
// writes needs N rounds. Raise this for very deep write chains; it must
// stay positive.
//
// Set at startup and do not change during runtime.
var MaxUpdateRounds = DefaultMaxUpdateRounds

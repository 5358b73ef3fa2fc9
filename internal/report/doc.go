// Package report tracks the progress of a set of named waits.
//
// The stakeout CLI runs one wait session per configured target; this
// package holds their current states and implements a publish-subscribe
// pattern so progress can be streamed to the terminal while sessions run.
//
// The main components are:
//
//   - [Tracker]: concurrent storage of wait states with pub/sub
//   - [WaitStatus]: the current state of one named wait
//
// The tracker is designed for concurrent access with proper
// synchronization. Subscribers receive updates via channels with
// non-blocking sends (slow subscribers will miss updates rather than
// block the waits).
package report

// Package progress reports packaging stages to the user.
//
// Stage durations cannot be known up front, so the terminal reporter keeps
// the bar moving between ticks with a slow, capped creep. The bar only ever
// moves forward and jumps to the next stage boundary on each tick.
package progress

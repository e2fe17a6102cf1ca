// Package view derives what each screen renders from the latest snapshots and
// the screen's selectors.
//
// Every function here is pure and synchronous: it never mutates its input and
// returns the same result for the same arguments. Day and week boundaries are
// computed in the location of the time value passed in as "now" or "day".
package view

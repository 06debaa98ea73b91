// Package sokuji implements live race scoring ("sokuji"): the rank-token
// parser, the 12-slot race, and the session that accumulates races and
// ad-hoc adjustments into team totals.
//
// Everything here is pure state. Callers serialize access per channel (see
// package keylock) and persist through a SessionStore with FromRecord and
// (*Session).Record.
package sokuji

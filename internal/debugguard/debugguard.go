// Package debugguard provides a cheap single-owner assertion for state
// that spec.md §5 says must be guarded if ever touched from more than
// one goroutine, even though the reference driver is strictly
// single-threaded. It is a debug check, not a mutex: the single-threaded
// driver pays no locking cost, but a stray concurrent caller trips it
// immediately instead of silently corrupting the guarded cache.
package debugguard

import "github.com/petermattis/goid"

// Guard records the goroutine ID of its first caller and panics if a
// later call arrives from a different one.
type Guard struct {
	owner int64
	bound bool
}

// Check asserts single-goroutine access.
func (g *Guard) Check() {
	id := goid.Get()
	if !g.bound {
		g.owner = id
		g.bound = true
		return
	}
	if g.owner != id {
		panic("debugguard: accessed from more than one goroutine")
	}
}

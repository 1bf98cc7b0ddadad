// Package binding wires one editor to one debug session: it mirrors the
// session's breakpoints as gutter markers, turns gutter clicks into
// breakpoint updates, and highlights the line execution is paused on.
//
// The package depends only on the Editor capability interface; any editor
// that can show a marker gutter and per-line display classes can be bound.
// The textview package provides a terminal implementation.
package binding

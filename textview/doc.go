// Package textview provides a Bubble Tea code view that implements the
// binding.Editor capability surface: line numbers, a breakpoint marker
// gutter with click handling, per-line display classes, and basic
// editing with change notifications.
//
// It is deliberately smaller than a full editor component; it exists so
// a debug binding has a concrete editor to drive in terminal hosts.
package textview

// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime debug introspection layer for a running reactor-chat server.
// A reactor-chat server takes its listen ports on the command line and
// has nothing to hot-reload, so this package carries only the
// debug-probe and ad-hoc stats-snapshot primitives.
package control

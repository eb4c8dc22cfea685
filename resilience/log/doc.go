// Package log defines the logging contract shared by all resilience
// components, plus a stdlib-backed default and a no-op null object.
//
// Structured production logging lives in the sibling zap package; this
// package stays dependency-free so leaf components can log without pulling
// in a logging stack.
package log

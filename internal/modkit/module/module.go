// Package module defines the minimal contract for a modkit module
package module

// Module defines the minimal contract used by modkit
// kept in its own package so a module can export its own Ports type without import knots
type Module interface {
	Ports() any
	Name() string
}

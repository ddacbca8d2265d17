// Package greet implements the greet command.
package greet

// Name is the command name the front-end invokes.
const Name = "greet"

// Greet returns "Hello, <name>!". Any string is accepted verbatim.
func Greet(name string) string {
	return "Hello, " + name + "!"
}

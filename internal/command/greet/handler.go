package greet

import (
	"context"

	"github.com/janisto/hustly/internal/command"
)

// Register wires the greet command into the registry.
func Register(reg *command.Registry) {
	command.Register(reg, command.Spec{
		Name:    Name,
		Summary: "Greet someone by name",
	}, handle)
}

func handle(_ context.Context, input *Input) (*Output, error) {
	return &Output{Body: Data{Message: Greet(input.Body.Name)}}, nil
}

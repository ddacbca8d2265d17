package greet

// Input is the request body for the greet command.
// Name is required but may be empty.
type Input struct {
	Body struct {
		Name string `json:"name" doc:"Name to greet" example:"World"`
	}
}

// Data models the greet response payload.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello, World!"`
}

// Output is the response envelope for the greet command.
type Output struct {
	Body Data
}

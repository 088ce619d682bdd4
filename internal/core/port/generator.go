package port

import "context"

// GenerationRequest is what a SQL generator needs to answer a question.
type GenerationRequest struct {
	Question string
	Schema   string
	Dialect  string
}

// SQLGenerator turns a natural-language question into candidate SQL. Its
// output is untrusted.
type SQLGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

package generator

import "context"

// MockGenerator returns a canned answer, or the error it was given.
type MockGenerator struct {
	Answer string
	Err    error

	// LastQuestion and LastContext record the most recent call for
	// assertions in tests.
	LastQuestion string
	LastContext  string
}

func (g *MockGenerator) Generate(_ context.Context, question, contextText string) (string, error) {
	g.LastQuestion = question
	g.LastContext = contextText
	if g.Err != nil {
		return "", g.Err
	}
	return g.Answer, nil
}

package crawler

import "context"

// MockGateway permite tests sin llamar al crawler real.
type MockGateway struct {
	Answer  Answer
	Err     error
	Prompts []string
}

func (m *MockGateway) Ask(_ context.Context, prompt string) (Answer, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return Answer{}, m.Err
	}
	return m.Answer, nil
}

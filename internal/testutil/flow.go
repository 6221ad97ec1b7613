package testutil

// FixedPassGenerator returns the same pass token every time, so it can back
// any number of passes and golden traces stay byte-identical across runs.
type FixedPassGenerator struct {
	token string
}

// NewFixedPassGenerator creates a fixed pass token generator.
// If token is empty, Generate() returns "test-pass-default".
func NewFixedPassGenerator(token string) *FixedPassGenerator {
	if token == "" {
		token = "test-pass-default"
	}
	return &FixedPassGenerator{token: token}
}

// Generate returns the fixed pass token.
// Implements engine.PassTokenGenerator.
func (g *FixedPassGenerator) Generate() string {
	return g.token
}

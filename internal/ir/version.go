package ir

// Version constants for the plan IR and resolver.
const (
	// IRVersion is the plan IR schema version.
	IRVersion = "1"

	// EngineVersion is the resolver version.
	EngineVersion = "0.1.0"
)

package domain

// Statement is one fact-checking input: the text presented to an agent and
// the classification a correct agent is expected to produce.
type Statement struct {
	// Text is the statement presented to the agent.
	Text string `json:"text" yaml:"text" validate:"required"`

	// Expected is the classification a correct agent should produce.
	Expected Classification `json:"expected" yaml:"expected" validate:"required,oneof=true false uncertain"`

	// Category groups statements by topic, e.g. "science" or "biology".
	Category string `json:"category" yaml:"category" validate:"required"`

	// Difficulty grades how hard the statement is to classify:
	// "easy", "medium", or "hard".
	Difficulty string `json:"difficulty" yaml:"difficulty" validate:"required,oneof=easy medium hard"`
}

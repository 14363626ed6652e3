// Package agents provides the two fact-checking agent implementations the
// comparison harness pits against each other: a vanilla agent that asks for
// free text and scrapes a verdict out of whatever comes back, and a schema
// agent that demands a structured JSON reply and rejects anything that does
// not conform.
//
// Both agents satisfy ports.FactChecker. Provider trouble and unparseable
// replies surface as domain.CheckFailure values, not Go errors. The error
// return is reserved for context cancellation and caller bugs.
package agents

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Agent group names used to bucket session metrics.
const (
	// VanillaGroup labels the free-text prompting strategy.
	VanillaGroup = "vanilla"

	// SchemaGroup labels the schema-enforced prompting strategy.
	SchemaGroup = "baml"
)

var (
	// ErrNilClient indicates an agent was constructed without an LLM client.
	ErrNilClient = errors.New("llm client cannot be nil")

	// ErrEmptyStatement indicates a check was requested for a statement with
	// no text.
	ErrEmptyStatement = errors.New("statement text cannot be empty")

	// ErrNoJSONFound indicates a reply contained no extractable JSON object.
	ErrNoJSONFound = errors.New("no JSON object found in response")

	// ErrUnknownClassification indicates a reply carried a classification
	// label outside the True/False/Uncertain contract.
	ErrUnknownClassification = errors.New("unknown classification label")
)

// validate is the shared validator instance for agent configs and reply
// contracts.
var validate = validator.New()

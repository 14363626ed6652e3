package agents

import "github.com/ahrav/go-faceoff/internal/domain"

// Grade reports whether a fact-check result matches the statement's expected
// classification. Failures are never correct. Successful results compare on
// the normalized classification, so label synonyms like "unclear" were
// already folded into uncertain at parse time.
func Grade(statement domain.Statement, result domain.FactCheckResult) bool {
	success, ok := result.(domain.CheckSuccess)
	if !ok {
		return false
	}
	return success.Classification == statement.Expected
}

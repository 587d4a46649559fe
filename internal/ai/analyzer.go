// Package ai assesses claims for fraud risk. The backend is chosen once at
// startup: a real OpenAI-backed analyzer or a deterministic fixture for
// development and tests. Call sites never decide between the two.
package ai

import (
	"context"

	"github.com/detachd/portal/internal/models"
)

// Assessment is the outcome of analyzing a claim.
type Assessment struct {
	// RiskScore is a 0-100 integer. Above 70 flags the claim for review.
	RiskScore      int    `json:"riskScore"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// Analyzer assesses a claim.
//
// When chunks is non-nil, the analyzer sends human-readable progress text to
// it as the assessment is produced. The analyzer does not close chunks; the
// caller owns the channel.
type Analyzer interface {
	AnalyzeClaim(ctx context.Context, claim models.ClaimRecord, chunks chan<- string) (*Assessment, error)
}

// MaxStreamChunks is an upper bound on the chunks any analyzer sends for one
// claim. The OpenAI backend emits at most one chunk per completion token and
// the fixture far fewer. A chunks channel buffered to this size never blocks
// the analyzer, even with no stream consumer attached.
const MaxStreamChunks = maxTokens

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

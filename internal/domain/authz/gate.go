package authz

import (
	"strings"

	"github.com/astro-web3/booking-api/internal/domain/token"
)

// Gate decides allow/deny for a request. It holds only read-only state.
type Gate struct {
	enforce  bool
	verifier token.Verifier
}

func NewGate(cfg *token.SigningConfig, verifier token.Verifier) *Gate {
	return &Gate{enforce: cfg.EnforcementEnabled, verifier: verifier}
}

// Evaluate applies the rules in order; enforcement being off short-circuits
// before the header is inspected.
func (g *Gate) Evaluate(req Request) *AuthzDecision {
	if len(req.Requirements) == 0 {
		return &AuthzDecision{Allow: true, Reason: ReasonNoRequirements}
	}
	if !g.enforce {
		return &AuthzDecision{Allow: true, Reason: ReasonEnforcementOff}
	}

	if !req.HasAuthorization {
		return &AuthzDecision{Allow: false, Reason: ReasonMissingHeader}
	}

	if _, err := g.verifier.Verify(ExtractToken(req.Authorization)); err != nil {
		return &AuthzDecision{Allow: false, Reason: ReasonTokenRejectedLabel + ": " + err.Error()}
	}

	return &AuthzDecision{Allow: true, Reason: ReasonTokenVerified}
}

// ExtractToken returns everything after the last space. It does not look at the scheme.
func ExtractToken(header string) string {
	return header[strings.LastIndex(header, " ")+1:]
}

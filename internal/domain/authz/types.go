package authz

// PolicyJwt is the single named policy protected endpoints carry.
const PolicyJwt = "Jwt"

const (
	ReasonNoRequirements     = "no pending requirements"
	ReasonEnforcementOff     = "enforcement disabled"
	ReasonMissingHeader      = "missing authorization header"
	ReasonTokenVerified      = "token verified"
	ReasonTokenRejectedLabel = "token rejected"
)

// AuthzDecision is the terminal state of one evaluation: allow or deny.
//
//nolint:revive // AuthzDecision keeps the domain name in the type for clarity
type AuthzDecision struct {
	Allow  bool
	Reason string
}

// Request is what the gate sees of an incoming call.
// HasAuthorization distinguishes an absent header from an empty one.
type Request struct {
	Requirements     []string
	Authorization    string
	HasAuthorization bool
}

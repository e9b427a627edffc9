package domain

// Context keys populated by the identity middleware.
const (
	RequesterIdentityCtxKey = "pl-requesterIdentity"
)

// Headers carrying the provider-verified identity into the service.
// The access proxy in front of punchline validates the session and
// forwards only these.
const (
	IdentityNameHeader  = "X-Identity-Name"
	IdentityEmailHeader = "X-Identity-Email"
)

package actor

// Type identifies who initiated an operation.
type Type string

const (
	TypeUser   Type = "user"
	TypeAgent  Type = "agent"
	TypeSystem Type = "system"
)

// Context carries actor attribution for audited operations. Every command,
// callback and evaluation takes one; audit rows copy it verbatim.
type Context struct {
	ActorType Type
	ActorID   string
	Channel   string
	TraceID   string
	Reason    string
}

// System returns the attribution used for internally initiated operations
// such as provider callbacks and review runs.
func System(traceID string) Context {
	return Context{ActorType: TypeSystem, ActorID: "scheduler", TraceID: traceID}
}

package auth

// FlowState tracks where a login/signup interaction is in its lifecycle.
type FlowState string

const (
	// FlowIdle means no submission is active; forms are editable.
	FlowIdle FlowState = "idle"
	// FlowSubmitting means a verifier round trip is in flight.
	FlowSubmitting FlowState = "submitting"
	// FlowSucceeded means the last submission completed and the caller
	// holds a redirect target.
	FlowSucceeded FlowState = "succeeded"
	// FlowFailed means the last submission was rejected; retrying returns
	// the flow to Idle.
	FlowFailed FlowState = "failed"
)

func (s FlowState) String() string {
	return string(s)
}

// flowTransitions is the legal transition graph. Reset moves any state back
// to Idle; begin() treats the terminal states as implicitly reset so a
// retry does not need an explicit Reset call.
var flowTransitions = map[FlowState]map[FlowState]struct{}{
	FlowIdle: {
		FlowSubmitting: {},
	},
	FlowSubmitting: {
		FlowSucceeded: {},
		FlowFailed:    {},
	},
	FlowSucceeded: {
		FlowIdle:       {},
		FlowSubmitting: {},
	},
	FlowFailed: {
		FlowIdle:       {},
		FlowSubmitting: {},
	},
}

func (s FlowState) canTransition(to FlowState) bool {
	targets, ok := flowTransitions[s]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

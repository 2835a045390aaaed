package pipeline

// State tracks a scoring run through its phases. Errored is absorbing and
// reachable only from input resolution and scoring; assembly is pure
// computation over validated data and always reaches Done.
type State string

const (
	StateIdle            State = "idle"
	StateResolvingInputs State = "resolving_inputs"
	StateScoring         State = "scoring"
	StateAssembling      State = "assembling"
	StateDone            State = "done"
	StateErrored         State = "errored"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateErrored
}

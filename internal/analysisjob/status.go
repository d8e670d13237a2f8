// Package analysisjob drives a long-running remote analysis computation
// through a trigger/poll/fetch state machine.
package analysisjob

// State is the remote job's lifecycle state. Completed and error are
// terminal; a job never transitions out of them.
type State string

const (
	// StateProcessing means the job is still running
	StateProcessing State = "processing"
	// StateCompleted means the job finished and its result can be fetched
	StateCompleted State = "completed"
	// StateError means the job failed remotely
	StateError State = "error"
)

// Terminal reports whether no further transition can occur from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// Status is one observation of the remote job's state.
type Status struct {
	State     State  `json:"state"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

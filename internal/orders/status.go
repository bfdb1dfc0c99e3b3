package orders

type Status string

// Placement workflow states.
const (
	StatusReceived   Status = "RECEIVED"
	StatusValidating Status = "VALIDATING"
	StatusReserving  Status = "RESERVING"
	StatusCommitting Status = "COMMITTING"
	StatusCompleted  Status = "COMPLETED"
	StatusRejected   Status = "REJECTED" // client error
	StatusFailed     Status = "FAILED"   // server error
)

var validNext = map[Status]map[Status]bool{
	StatusReceived:   {StatusValidating: true, StatusRejected: true, StatusFailed: true},
	StatusValidating: {StatusReserving: true, StatusRejected: true, StatusFailed: true},
	StatusReserving:  {StatusCommitting: true, StatusRejected: true, StatusFailed: true},
	StatusCommitting: {StatusCompleted: true, StatusRejected: true, StatusFailed: true},
	StatusCompleted:  {},
	StatusRejected:   {},
	StatusFailed:     {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

package models

// NavigationStage is one step of the order submission workflow. A stage may only
// advance forward or drop to StageFailed; it never moves backwards.
type NavigationStage string

const (
	StageUnauthenticated NavigationStage = "unauthenticated"
	StageAuthenticated   NavigationStage = "authenticated"
	StagePatientLocated  NavigationStage = "patient_located"
	StagePatientCreated  NavigationStage = "patient_created"
	StageOrderDetails    NavigationStage = "order_details"
	StageValidated       NavigationStage = "validated"
	StageSubmitted       NavigationStage = "submitted"
	StageConfirmed       NavigationStage = "confirmed"
	StageFailed          NavigationStage = "failed"
	// StageAbandoned labels the audit frame of a run cut short by
	// cancellation. It is a frame label only, never a state transition.
	StageAbandoned NavigationStage = "abandoned"
)

var stageRank = map[NavigationStage]int{
	StageUnauthenticated: 0,
	StageAuthenticated:   1,
	StagePatientLocated:  2,
	StagePatientCreated:  2,
	StageOrderDetails:    3,
	StageValidated:       4,
	StageSubmitted:       5,
	StageConfirmed:       6,
}

// NavigationState tracks the live stage of one in-flight order. It is owned by a
// single navigator run and is not shared across orders.
type NavigationState struct {
	OrderID string
	Stage   NavigationStage
}

func NewNavigationState(orderID string) *NavigationState {
	return &NavigationState{OrderID: orderID, Stage: StageUnauthenticated}
}

// CanAdvance reports whether moving to next is a legal transition: strictly
// forward, or to the terminal failed stage from anywhere.
func (n *NavigationState) CanAdvance(next NavigationStage) bool {
	if n.Stage == StageFailed {
		return false
	}
	if next == StageFailed {
		return true
	}
	currentRank, ok := stageRank[n.Stage]
	if !ok {
		return false
	}
	nextRank, ok := stageRank[next]
	if !ok {
		return false
	}
	return nextRank > currentRank
}

// Advance moves the state to next. It returns false and leaves the state
// untouched when the transition is not legal.
func (n *NavigationState) Advance(next NavigationStage) bool {
	if !n.CanAdvance(next) {
		return false
	}
	n.Stage = next
	return true
}

func (n *NavigationState) Terminal() bool {
	return n.Stage == StageConfirmed || n.Stage == StageFailed
}

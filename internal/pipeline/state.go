package pipeline

// State is a point in the assembly state machine. Every state after StateInit
// records that the named stage's postcondition held.
type State string

const (
	// StateInit is the state before any host call.
	StateInit State = "INIT"
	// StateSequenceCreated means a sequence was created and is the active one.
	StateSequenceCreated State = "SEQUENCE_CREATED"
	// StateMediaImported means both assets are in the media pool.
	StateMediaImported State = "MEDIA_IMPORTED"
	// StateClipsPlaced means the image and audio were inserted on their tracks.
	StateClipsPlaced State = "CLIPS_PLACED"
	// StateDurationMatched means the image out-point equals the audio duration.
	StateDurationMatched State = "DURATION_MATCHED"
	// StateScaled means the image clip was scaled to the frame.
	StateScaled State = "SCALED"
	// StatePresetResolved means the export preset exists in the registry.
	StatePresetResolved State = "PRESET_RESOLVED"
	// StateExportQueued means the encoder accepted the export job. Terminal.
	StateExportQueued State = "EXPORT_QUEUED"
	// StateAborted means a gate failed and no further stage ran. Terminal.
	StateAborted State = "ABORTED"
)

// order lists the success path. Each state may only advance to its successor.
var order = []State{
	StateInit,
	StateSequenceCreated,
	StateMediaImported,
	StateClipsPlaced,
	StateDurationMatched,
	StateScaled,
	StatePresetResolved,
	StateExportQueued,
}

// validTransitions defines which state transitions are allowed.
var validTransitions = func() map[State][]State {
	m := make(map[State][]State, len(order)+1)
	for i, s := range order[:len(order)-1] {
		m[s] = []State{order[i+1], StateAborted}
	}
	m[StateExportQueued] = nil
	m[StateAborted] = nil
	return m
}()

// CanTransition reports whether the state machine allows from → to.
func CanTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for EXPORT_QUEUED and ABORTED.
func (s State) IsTerminal() bool {
	return s == StateExportQueued || s == StateAborted
}

// IsValid returns true if s is a known state.
func (s State) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// States returns the success path in order.
func States() []State {
	return append([]State(nil), order...)
}

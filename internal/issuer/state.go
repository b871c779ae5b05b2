package issuer

// State tracks how far one issuance attempt progressed. Each voter walks the
// states in order; Aborted is terminal and reachable from any point.
type State int

const (
	StateStart State = iota
	StateKeysGenerated
	StatePendingPersisted
	StateNotified
	StateRegistrySynced
	StateCommitted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateKeysGenerated:
		return "keys_generated"
	case StatePendingPersisted:
		return "pending_persisted"
	case StateNotified:
		return "notified"
	case StateRegistrySynced:
		return "registry_synced"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

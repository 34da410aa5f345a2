package pipeline

// Kind selects which of the two measurement pipelines an instance runs.
// The two kinds share the dispatch, caching and republication machinery and
// differ only in derivation shape and accumulation strategy.
type Kind string

const (
	// KindIV processes current-vs-voltage sweeps (one full sweep per message).
	KindIV Kind = "iv"
	// KindIT processes streaming current-vs-time traces (one point per message).
	KindIT Kind = "it"
)

// Topics shared by both pipeline kinds.
const (
	TopicRunConfig = "measurement/run"
	TopicPause     = "plotter/pause"
)

// Valid reports whether k is a known measurement kind.
func (k Kind) Valid() bool {
	return k == KindIV || k == KindIT
}

// RawTopic is the inbound topic carrying raw measurement records.
func (k Kind) RawTopic() string {
	return "data/raw/" + string(k) + "_measurement"
}

// ProcessedTopic is the outbound topic carrying augmented records.
func (k Kind) ProcessedTopic() string {
	return "data/processed/" + string(k) + "_measurement"
}

// SeriesCols is the column count of the accumulated series for this kind.
func (k Kind) SeriesCols() int {
	if k == KindIV {
		return 4
	}
	return 3
}

// DefaultWebPort is the fixed presentation-server port for this kind.
func (k Kind) DefaultWebPort() int {
	if k == KindIV {
		return 8052
	}
	return 8054
}

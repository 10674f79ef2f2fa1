package gate

// #region veto-type
// VetoType enumerates hard veto categories for analysis payloads.
type VetoType string

const (
	VetoEmpty     VetoType = "empty_payload"
	VetoNonFinite VetoType = "non_finite_value"
	VetoRange     VetoType = "out_of_range"
	VetoUnknown   VetoType = "unknown_channel"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for merge decisions.
type GateConfig struct {
	BaseWeight     float64 // merge weight for a small, well-formed payload
	MaxMergeDelta  float64 // cap on weight * L2(payload - current) over present channels
	RangeTolerance float64 // values within [-tol, 1+tol] are clamped, beyond is a veto
	MinWeight      float64 // decisions below this weight are reported as no_op
}

// DefaultGateConfig returns defaults that let one analysis result move the
// field noticeably without snapping it.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		BaseWeight:     0.6,
		MaxMergeDelta:  0.35,
		RangeTolerance: 0.05,
		MinWeight:      1e-3,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "commit" | "reject" | "no_op"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
	Weight      float64      // merge weight to pass to affect.State.Merge
	SoftScore   float64      // 0-1 composite of coverage and closeness (for logging)
	DeltaNorm   float64      // L2(payload - current) over present channels
}

// #endregion gate-decision

package types

// Stage is the conversation's current phase. It is derived from record
// completeness every turn and never mutated independently.
type Stage string

const (
	StageGreeting     Stage = "greeting"
	StageCritical     Stage = "critical"
	StageHigh         Stage = "high"
	StageMedium       Stage = "medium"
	StageLow          Stage = "low"
	StageConfirmation Stage = "confirmation"
	StageComplete     Stage = "complete"
)

// Strategy is the named response-behavior class selected per turn.
type Strategy string

const (
	StrategyA Strategy = "A" // greeting, nothing collected yet
	StrategyB Strategy = "B" // collecting critical fields
	StrategyC Strategy = "C" // collecting high fields
	StrategyD Strategy = "D" // collecting medium fields
	StrategyE Strategy = "E" // offering skippable low fields
	StrategyF Strategy = "F" // confirmation
)

// Tier is the priority class governing ask order.
type Tier int

const (
	TierCritical Tier = iota
	TierHigh
	TierMedium
	TierLow
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return "unknown"
	}
}

// FieldStatus tracks what the session knows about a single field.
// Legal transitions: unset→set, set→needs_correction, needs_correction→set,
// unset→skipped, skipped→set.
type FieldStatus string

const (
	StatusUnset           FieldStatus = "unset"
	StatusSet             FieldStatus = "set"
	StatusSkipped         FieldStatus = "skipped"
	StatusNeedsCorrection FieldStatus = "needs_correction"
)

type FieldInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Tier        string `json:"tier"`
	Required    bool   `json:"required"`
}

// Directive is the symbolic per-turn output of the core. An external
// renderer turns it into a user-facing message; the core never emits prose.
type Directive struct {
	Strategy    Strategy  `json:"strategy"`
	Stage       Stage     `json:"stage"`
	TargetField string    `json:"target_field,omitempty"`
	Target      FieldInfo `json:"target,omitempty"`
}

// HasTarget reports whether the directive names a field to ask about.
// It is false only at confirmation and completion.
func (d Directive) HasTarget() bool {
	return d.TargetField != ""
}

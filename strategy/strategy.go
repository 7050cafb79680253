// Package strategy maps resolver output onto the conversation stage and
// the named response strategy. Selection is a pure table: it is recomputed
// from the record every turn and never carries hidden state.
package strategy

import (
	"github.com/hvacdesk/bookingagent/record"
	"github.com/hvacdesk/bookingagent/resolve"
	"github.com/hvacdesk/bookingagent/schema"
	"github.com/hvacdesk/bookingagent/types"
)

// Input is everything selection may look at for one turn.
type Input struct {
	Record  *record.Record
	Skipped map[string]bool
	// LastAsked and LastAnswerWasSkip describe the immediately preceding
	// turn; they drive the low-tier no-repeat guard.
	LastAsked         string
	LastAnswerWasSkip bool
}

// Select computes the per-turn directive. Every stage except confirmation
// and completion names exactly one target field.
func Select(in Input) types.Directive {
	next := resolve.NextMissing(in.Record, in.Skipped)

	// A low field skipped on the previous turn must not be re-asked,
	// even if the skip has not landed in the skip set yet.
	if next != nil && next.Tier == types.TierLow && next.Name == in.LastAsked && in.LastAnswerWasSkip {
		next = nextLowAfter(in.Record, in.Skipped, next)
	}

	if next == nil {
		return types.Directive{
			Strategy: types.StrategyF,
			Stage:    types.StageConfirmation,
		}
	}

	stage := stageFor(in.Record, next)
	return types.Directive{
		Strategy:    strategyFor(stage),
		Stage:       stage,
		TargetField: next.Name,
		Target:      next.Info(),
	}
}

func stageFor(rec *record.Record, next *schema.Field) types.Stage {
	if rec.Empty() {
		return types.StageGreeting
	}
	switch next.Tier {
	case types.TierCritical:
		return types.StageCritical
	case types.TierHigh:
		return types.StageHigh
	case types.TierMedium:
		return types.StageMedium
	default:
		return types.StageLow
	}
}

func strategyFor(stage types.Stage) types.Strategy {
	switch stage {
	case types.StageGreeting:
		return types.StrategyA
	case types.StageCritical:
		return types.StrategyB
	case types.StageHigh:
		return types.StrategyC
	case types.StageMedium:
		return types.StrategyD
	case types.StageLow:
		return types.StrategyE
	default:
		return types.StrategyF
	}
}

func nextLowAfter(rec *record.Record, skipped map[string]bool, after *schema.Field) *schema.Field {
	lows := schema.TierFields(types.TierLow)
	seen := false
	for _, f := range lows {
		if f.Name == after.Name {
			seen = true
			continue
		}
		if !seen {
			continue
		}
		if rec.Status(f.Name) == types.StatusUnset && !skipped[f.Name] {
			return f
		}
	}
	return nil
}

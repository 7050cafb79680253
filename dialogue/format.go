package dialogue

import (
	"fmt"
	"strings"

	"github.com/hvacdesk/bookingagent/types"
)

func formatRenderRequest(req *Request) string {
	d := req.Directive
	sections := []string{
		fmt.Sprintf("# Directive:\nstrategy: %s\nstage: %s", d.Strategy, d.Stage),
	}
	if d.HasTarget() {
		target := fmt.Sprintf("# Target field:\n%s [%s, tier %s]", d.Target.DisplayName, d.Target.Name, d.Target.Tier)
		if d.Target.Description != "" {
			target += "\n" + d.Target.Description
		}
		sections = append(sections, target)
	}
	if req.InvalidValue != "" {
		sections = append(sections, fmt.Sprintf("# Invalid value to correct:\n%q (%d retries left)", req.InvalidValue, req.AttemptsLeft))
	}
	if table := types.FormatRecordTable(req.Rows); table != "" {
		sections = append(sections, "# Record so far:\n"+table)
	}
	return strings.Join(sections, "\n\n")
}

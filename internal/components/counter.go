package components

import (
	"context"

	"github.com/a-h/templ"
	"github.com/pthm/islands"
)

// CounterProps holds the counter's initial state.
type CounterProps struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	Step  int    `json:"step,omitzero"`
}

// Counter is a stateless counter. The server renders the initial value;
// the client owns every update after hydration.
var Counter = islands.New(func(_ context.Context, p CounterProps) templ.Component {
	return html(`<div class="counter"><span class="counter-label">%s</span><button type="button" data-step="-%d">-</button><output>%d</output><button type="button" data-step="%d">+</button></div>`,
		templ.EscapeString(p.Label), p.Step, p.Start, p.Step)
}).WithPrepare(func(_ context.Context, p *CounterProps) error {
	if p.Step == 0 {
		p.Step = 1
	}
	if p.Label == "" {
		p.Label = "Count"
	}
	return nil
})

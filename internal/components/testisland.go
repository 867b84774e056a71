package components

import (
	"context"

	"github.com/a-h/templ"
	"github.com/pthm/islands"
)

// TestIslandProps identifies a demo island on the page.
type TestIslandProps struct {
	IslandID int `json:"islandId"`
}

// TestIsland is the minimal demo island: a heading and a click counter the
// client takes over.
var TestIsland = islands.New(func(_ context.Context, p TestIslandProps) templ.Component {
	return html(`<div class="test-island"><p>Island #%d</p><button type="button">Clicked 0 times</button></div>`, p.IslandID)
})

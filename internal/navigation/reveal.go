package navigation

import "time"

// DefaultStagger is the gap between two revealed items.
const DefaultStagger = 30 * time.Millisecond

type RevealStep struct {
	ID      string        `json:"id"`
	Depth   int           `json:"depth"`
	Delay   time.Duration `json:"-"`
	DelayMS int64         `json:"delayMs"`
}

// RevealOrder lists the tree depth first with every parent ahead of its
// children. Delay is the step index times stagger.
func RevealOrder(tree []Item, stagger time.Duration) []RevealStep {
	var steps []RevealStep
	var walk func(items []Item, depth int)
	walk = func(items []Item, depth int) {
		for _, it := range items {
			delay := time.Duration(len(steps)) * stagger
			steps = append(steps, RevealStep{
				ID:      it.ID,
				Depth:   depth,
				Delay:   delay,
				DelayMS: delay.Milliseconds(),
			})
			walk(it.Children, depth+1)
		}
	}
	walk(tree, 0)
	return steps
}

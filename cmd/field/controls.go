package main

import (
	"log"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/render"
)

// controls hands UI actions from the event goroutine to the loop goroutine.
// It runs as the first RenderSink, so Reset and SetAutoKind happen between
// ticks.
type controls struct {
	orch    *orchestrator.Orchestrator
	actions chan render.Action
}

func newControls(orch *orchestrator.Orchestrator, buffer int) *controls {
	return &controls{orch: orch, actions: make(chan render.Action, buffer)}
}

// Push queues a without blocking. It reports false when the queue is full.
func (c *controls) Push(a render.Action) bool {
	select {
	case c.actions <- a:
		return true
	default:
		return false
	}
}

// Render applies every queued action. The frame itself is ignored.
func (c *controls) Render(orchestrator.FrameOutput) error {
	for {
		select {
		case a := <-c.actions:
			c.apply(a)
		default:
			return nil
		}
	}
}

func (c *controls) apply(a render.Action) {
	switch a.Kind {
	case render.ActionSetKind:
		c.orch.SetAutoKind(false)
		c.orch.SetKind(a.Layout)
		log.Printf("[FIELD] layout → %s", a.Layout)
	case render.ActionAutoKind:
		c.orch.SetAutoKind(true)
		log.Printf("[FIELD] layout follows dominant affect")
	case render.ActionReset:
		c.orch.Reset()
	}
}

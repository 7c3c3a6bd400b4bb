package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tune.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingInputs []InputEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingInputs = append(pendingInputs, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingInputs)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingInputs = pendingInputs[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for tests and tools.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, inputs []InputEnvelope) uint64 {
	tick := w.tick.Load()
	w.step(joins, leaves, inputs)
	return tick
}

func (w *World) step(joins []JoinRequest, leaves []string, inputs []InputEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	// Leaves and joins apply at the tick boundary.
	for _, id := range leaves {
		w.handleLeave(id)
	}
	for _, req := range joins {
		resp := w.joinPlayer(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
	}

	// Inputs apply in arrival order, each to completion.
	for _, env := range inputs {
		p := w.players[env.PlayerID]
		if p == nil {
			continue
		}
		w.applyInputs(p, env.Msg, nowTick)
	}

	// Systems: scheduled effects -> pickup -> expiry.
	w.queue.RunDue(nowTick)
	w.systemPickup(nowTick)
	w.store.CleanupExpired(nowTick)

	for _, id := range sortedKeys(w.players) {
		w.sendView(w.players[id], nowTick)
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.metrics.Store(WorldMetrics{
		Tick:        nextTick,
		Players:     len(w.players),
		Items:       w.store.Len(),
		Trees:       len(w.grove.Trees()),
		Scheduled:   w.queue.Len(),
		QueueDepths: QueueDepths{Inbox: len(w.inbox), Join: len(w.join), Leave: len(w.leave)},
		StepMS:      stepMS,
	})
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

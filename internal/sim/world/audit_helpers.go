package world

import "github.com/go-gl/mathgl/mgl32"

func (w *World) auditEvent(tick uint64, actor string, action string, pos mgl32.Vec2, reason string, details map[string]any) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Tick:    tick,
		Actor:   actor,
		Action:  action,
		Pos:     arr2(pos),
		Reason:  reason,
		Details: details,
	})
}

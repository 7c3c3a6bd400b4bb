package worldtest

import (
	"testing"

	"farmstead.dev/internal/protocol"
)

func inventoryView(v protocol.ViewMsg, id string) (protocol.InventoryView, bool) {
	for _, iv := range v.Inventories {
		if iv.ID == id {
			return iv, true
		}
	}
	return protocol.InventoryView{}, false
}

func slotText(t *testing.T, v protocol.ViewMsg, invID string, slot int) string {
	t.Helper()
	iv, ok := inventoryView(v, invID)
	if !ok {
		t.Fatalf("inventory %s not in view (have %d inventories)", invID, len(v.Inventories))
	}
	if slot < 0 || slot >= len(iv.Slots) {
		t.Fatalf("slot %d out of range for %s", slot, invID)
	}
	return iv.Slots[slot].Text
}

func hasTree(v protocol.ViewMsg, id string) bool {
	for _, tr := range v.Trees {
		if tr.ID == id {
			return true
		}
	}
	return false
}

func findEvent(events []protocol.Event, typ string) (protocol.Event, bool) {
	for _, e := range events {
		if e["type"] == typ {
			return e, true
		}
	}
	return nil, false
}

func actionResultCode(events []protocol.Event, ref string) string {
	for _, e := range events {
		if typ, _ := e["type"].(string); typ != "ACTION_RESULT" {
			continue
		}
		if got, _ := e["ref"].(string); got != ref {
			continue
		}
		if ok, _ := e["ok"].(bool); ok {
			return ""
		}
		if code, _ := e["code"].(string); code != "" {
			return code
		}
		return protocol.ErrInternal
	}
	return "MISSING"
}

package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PlayerName      string            `json:"player_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id,omitempty"`
	PlayerID        string         `json:"player_id"`
	WorldParams     WorldParams    `json:"world_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
	Inventories     []InventoryRef `json:"inventories"`
	Toolbar         string         `json:"toolbar,omitempty"`
}

type WorldParams struct {
	TickRateHz   int     `json:"tick_rate_hz"`
	PickupRadius float32 `json:"pickup_radius"`
	ChestReach   float32 `json:"chest_reach"`
	ChopRange    float32 `json:"chop_range"`
}

type CatalogDigests struct {
	Items DigestRef `json:"items"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

type InventoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slots int    `json:"slots"`
}

// CATALOG (server -> client)
type CatalogMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Name            string      `json:"name"`
	Digest          string      `json:"digest"`
	Part            int         `json:"part"`
	TotalParts      int         `json:"total_parts"`
	Data            interface{} `json:"data"`
}

// Input kinds.
const (
	InputBeginDrag  = "BEGIN_DRAG"
	InputDrag       = "DRAG"
	InputDrop       = "DROP"
	InputDropWorld  = "DROP_WORLD"
	InputCancel     = "CANCEL"
	InputEndDrag    = "END_DRAG"
	InputSelectSlot = "SELECT_SLOT"
	InputKey        = "KEY"
	InputMove       = "MOVE"
	InputRemove     = "REMOVE"
	InputChop       = "CHOP"
)

// Drag gestures.
const (
	GestureStack = "STACK"
	GestureOne   = "ONE"
)

// INPUT (client -> server)
type InputMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Inputs          []Input `json:"inputs"`
}

// Input is one pointer, keyboard or action event. Inventory is an inventory
// id ("owner/name") for slot-addressed kinds; Target names a tree for CHOP.
type Input struct {
	ID        string     `json:"id,omitempty"`
	Kind      string     `json:"kind"`
	Inventory string     `json:"inventory,omitempty"`
	Slot      int        `json:"slot,omitempty"`
	Gesture   string     `json:"gesture,omitempty"`
	Pos       [2]float32 `json:"pos,omitempty"`
	Key       string     `json:"key,omitempty"`
	Target    string     `json:"target,omitempty"`
}

// VIEW (server -> client)
type ViewMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Tick            uint64          `json:"tick"`
	PlayerID        string          `json:"player_id"`
	Pos             [2]float32      `json:"pos"`
	Inventories     []InventoryView `json:"inventories"`
	Selected        int             `json:"selected"`
	DragState       string          `json:"drag_state"`
	Drag            []DragIconView  `json:"drag,omitempty"`
	Items           []ItemView      `json:"items,omitempty"`
	Trees           []TreeView      `json:"trees,omitempty"`
	Chests          []ChestView     `json:"chests,omitempty"`
	Events          []Event         `json:"events,omitempty"`
}

type InventoryView struct {
	ID    string     `json:"id"`
	Slots []SlotView `json:"slots"`
}

type SlotView struct {
	Icon      string `json:"icon,omitempty"`
	Text      string `json:"text,omitempty"`
	Visible   bool   `json:"visible"`
	Highlight bool   `json:"highlight,omitempty"`
}

type DragIconView struct {
	Icon  string     `json:"icon"`
	Count int        `json:"count"`
	Pos   [2]float32 `json:"pos"`
}

type ItemView struct {
	ID    string     `json:"id"`
	Item  string     `json:"item"`
	Count int        `json:"count"`
	Pos   [2]float32 `json:"pos"`
}

type TreeView struct {
	ID     string     `json:"id"`
	Pos    [2]float32 `json:"pos"`
	Health float32    `json:"health"`
}

type ChestView struct {
	ID        string     `json:"id"`
	Pos       [2]float32 `json:"pos"`
	Inventory string     `json:"inventory"`
}

type Event map[string]interface{}

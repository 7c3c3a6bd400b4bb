package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Inventory and transfer layer.
	ErrInventoryFull           = "E_INVENTORY_FULL"
	ErrInsufficientQuantity    = "E_INSUFFICIENT_QUANTITY"
	ErrIncompatibleDestination = "E_INCOMPATIBLE_DESTINATION"
	ErrCatalogMiss             = "E_CATALOG_MISS"

	// Rule/action layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrOutOfRange    = "E_OUT_OF_RANGE"
	ErrRateLimit     = "E_RATE_LIMIT"
	ErrConflict      = "E_CONFLICT"
	ErrStale         = "E_STALE"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:         {},
	ErrInventoryFull:           {},
	ErrInsufficientQuantity:    {},
	ErrIncompatibleDestination: {},
	ErrCatalogMiss:             {},
	ErrBadRequest:              {},
	ErrInvalidTarget:           {},
	ErrOutOfRange:              {},
	ErrRateLimit:               {},
	ErrConflict:                {},
	ErrStale:                   {},
	ErrInternal:                {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

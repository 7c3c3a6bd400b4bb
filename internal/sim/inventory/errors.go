package inventory

import "errors"

var (
	ErrInventoryFull           = errors.New("inventory full")
	ErrInsufficientQuantity    = errors.New("insufficient quantity")
	ErrIncompatibleDestination = errors.New("incompatible destination")
	ErrNoSuchSlot              = errors.New("no such slot")
	ErrInvalidQuantity         = errors.New("invalid quantity")
	ErrNoSuchInventory         = errors.New("no such inventory")
)

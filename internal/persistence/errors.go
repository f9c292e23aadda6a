package persistence

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInventoryFull     = errors.New("inventory full")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrUnknownSortMode   = errors.New("unknown sort mode")
	ErrCharacterNotFound = errors.New("character not found")
)

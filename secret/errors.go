package secret

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSlot indicates a slot number outside [MinSlot, MaxSlot].
	ErrInvalidSlot = errors.New("secret: invalid slot")

	// ErrNotFound indicates a reference resolved to no value.
	ErrNotFound = errors.New("secret: not found")

	// ErrInvalidRef indicates a provider reference could not be parsed.
	ErrInvalidRef = errors.New("secret: invalid reference")
)

// InvalidSlotError is returned when a slot number outside [MinSlot, MaxSlot]
// is used to form a lookup key.
type InvalidSlotError struct {
	Slot int
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("secret: slot %d out of range [%d, %d]", e.Slot, MinSlot, MaxSlot)
}

// Is reports whether target is ErrInvalidSlot.
func (e *InvalidSlotError) Is(target error) bool {
	return target == ErrInvalidSlot
}

package bingo

import (
	"errors"
	"fmt"
)

// MaxCells is the largest number of cells a Checked bitmask can track.
const MaxCells = 31

// ErrCellOutOfRange is returned for a cell number outside [0, MaxCells).
var ErrCellOutOfRange = errors.New("bingo: cell out of range")

// Checked is the set of checked cells of a ticket, one bit per cell number.
type Checked uint32

func checkCell(cell int) error {
	if cell < 0 || cell >= MaxCells {
		return fmt.Errorf("%w: %d", ErrCellOutOfRange, cell)
	}
	return nil
}

// IsSet reports whether cell is checked. Out of range cells are never set.
func (c Checked) IsSet(cell int) bool {
	if checkCell(cell) != nil {
		return false
	}
	return c&(1<<uint(cell)) != 0
}

// Set returns c with cell checked.
func (c Checked) Set(cell int) (Checked, error) {
	if err := checkCell(cell); err != nil {
		return c, err
	}
	return c | 1<<uint(cell), nil
}

// Clear returns c with cell unchecked.
func (c Checked) Clear(cell int) (Checked, error) {
	if err := checkCell(cell); err != nil {
		return c, err
	}
	return c &^ (1 << uint(cell)), nil
}

// Toggle returns c with cell flipped.
func (c Checked) Toggle(cell int) (Checked, error) {
	if err := checkCell(cell); err != nil {
		return c, err
	}
	return c ^ 1<<uint(cell), nil
}

// Count returns the number of checked cells.
func (c Checked) Count() int {
	n := 0
	for v := uint32(c); v != 0; v &= v - 1 {
		n++
	}
	return n
}

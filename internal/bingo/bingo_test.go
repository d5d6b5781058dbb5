package bingo

import (
	"errors"
	"testing"
)

func TestChecked_ToggleCellThree(t *testing.T) {
	// Given: a ticket with nothing checked
	var c Checked

	// When: cell 3 is toggled
	c, err := c.Toggle(3)
	if err != nil {
		t.Fatalf("Toggle(3) error = %v", err)
	}

	// Then: bit 3 is set
	if c != 8 {
		t.Errorf("checked = %d, want 8", c)
	}

	// When: cell 3 is toggled again
	c, err = c.Toggle(3)
	if err != nil {
		t.Fatalf("Toggle(3) error = %v", err)
	}

	// Then: the mask is back to zero
	if c != 0 {
		t.Errorf("checked = %d, want 0", c)
	}
}

func TestChecked_SetClear(t *testing.T) {
	c, _ := Checked(0).Set(0)
	c, _ = c.Set(4)
	if !c.IsSet(0) || !c.IsSet(4) {
		t.Fatalf("cells 0 and 4 should be set, mask = %b", c)
	}
	if c.IsSet(1) {
		t.Error("cell 1 should not be set")
	}
	if got := c.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	c, _ = c.Clear(0)
	if c != 16 {
		t.Errorf("checked = %d, want 16", c)
	}
}

func TestChecked_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		cell int
	}{
		{name: "negative", cell: -1},
		{name: "at limit", cell: MaxCells},
		{name: "far beyond", cell: 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Checked(5).Toggle(tt.cell)
			if !errors.Is(err, ErrCellOutOfRange) {
				t.Errorf("Toggle(%d) error = %v, want ErrCellOutOfRange", tt.cell, err)
			}
			if c != 5 {
				t.Errorf("mask changed to %d on error", c)
			}
			if Checked(^uint32(0)).IsSet(tt.cell) {
				t.Errorf("IsSet(%d) = true for out of range cell", tt.cell)
			}
		})
	}
}

func TestPopularityKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Rock Night", "rocknight"},
		{"rock night!", "rocknight"},
		{"Pop Night", "popnight"},
		{"80's Disco", "80sdisco"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PopularityKey(tt.title); got != tt.want {
			t.Errorf("PopularityKey(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestThemeSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Rock Night!", "rock-night"},
		{"  Pop -- Night ", "pop-night"},
		{"80's Disco", "80-s-disco"},
		{"Film_Themes", "film_themes"},
	}
	for _, tt := range tests {
		if got := ThemeSlug(tt.title); got != tt.want {
			t.Errorf("ThemeSlug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestOptions_Cells(t *testing.T) {
	o := Options{Rows: 3, Columns: 5}
	if got := o.Cells(); got != 15 {
		t.Errorf("Cells() = %d, want 15", got)
	}
}

func TestTicket_Claimed(t *testing.T) {
	if (Ticket{Owner: Unclaimed}).Claimed() {
		t.Error("unclaimed ticket reports Claimed")
	}
	if !(Ticket{Owner: 42}).Claimed() {
		t.Error("owned ticket reports not Claimed")
	}
}

package vtcore

import (
	"testing"
)

func TestNewCell(t *testing.T) {
	cell := NewCell()

	if cell.Char != ' ' {
		t.Errorf("expected space, got '%c'", cell.Char)
	}
	if nc, ok := cell.Fg.(*NamedColor); !ok || nc.Name != NamedColorForeground {
		t.Errorf("expected default foreground sentinel, got %v", cell.Fg)
	}
	if nc, ok := cell.Bg.(*NamedColor); !ok || nc.Name != NamedColorBackground {
		t.Errorf("expected default background sentinel, got %v", cell.Bg)
	}
	if cell.Flags != 0 {
		t.Error("expected no flags")
	}
}

func TestCellReset(t *testing.T) {
	cell := NewCell()
	cell.Char = 'A'
	cell.SetFlag(CellFlagBold)

	cell.Reset()

	if cell.Char != ' ' {
		t.Errorf("expected space after reset, got '%c'", cell.Char)
	}
	if cell.HasFlag(CellFlagBold) {
		t.Error("expected no flags after reset")
	}
}

func TestCellFlags(t *testing.T) {
	cell := NewCell()

	cell.SetFlag(CellFlagBold)
	if !cell.HasFlag(CellFlagBold) {
		t.Error("expected bold flag")
	}

	cell.SetFlag(CellFlagItalic)
	if !cell.HasFlag(CellFlagBold) || !cell.HasFlag(CellFlagItalic) {
		t.Error("expected both flags")
	}

	cell.ClearFlag(CellFlagBold)
	if cell.HasFlag(CellFlagBold) {
		t.Error("expected bold flag to be cleared")
	}
	if !cell.HasFlag(CellFlagItalic) {
		t.Error("expected italic flag to remain")
	}
}

func TestCellDirty(t *testing.T) {
	cell := NewCell()

	if cell.IsDirty() {
		t.Error("expected cell not dirty initially")
	}

	cell.MarkDirty()
	if !cell.IsDirty() {
		t.Error("expected cell to be dirty")
	}

	cell.ClearDirty()
	if cell.IsDirty() {
		t.Error("expected cell not dirty after clear")
	}
}

func TestCellWide(t *testing.T) {
	cell := NewCell()

	cell.SetFlag(CellFlagWideChar)
	if !cell.IsWide() {
		t.Error("expected cell to be wide")
	}

	spacer := NewCell()
	spacer.SetFlag(CellFlagWideCharSpacer)
	if !spacer.IsWideSpacer() {
		t.Error("expected cell to be spacer")
	}
}

func TestCellCopy(t *testing.T) {
	cell := NewCell()
	cell.Char = 'X'
	cell.SetFlag(CellFlagBold | CellFlagItalic)

	copied := cell.Copy()

	if copied.Char != 'X' {
		t.Errorf("expected 'X', got '%c'", copied.Char)
	}
	if !copied.HasFlag(CellFlagBold) || !copied.HasFlag(CellFlagItalic) {
		t.Error("expected flags to be copied")
	}

	// Modify original, copy should be unchanged
	cell.Char = 'Y'
	if copied.Char != 'X' {
		t.Error("copy should be independent")
	}
}

func TestCellGraphemePlain(t *testing.T) {
	cell := NewCell()
	cell.Char = 'e'

	if got := cell.Grapheme(nil); got != "e" {
		t.Errorf("expected %q, got %q", "e", got)
	}
	if cell.IsComposed() {
		t.Error("plain rune should not report as composed")
	}
}

func TestCellGraphemeComposed(t *testing.T) {
	ct := newComposeTable()
	sentinel := ct.Intern('e', []rune{0x0301}) // e + combining acute

	cell := NewCell()
	cell.Char = sentinel

	if !cell.IsComposed() {
		t.Error("expected sentinel rune to report as composed")
	}
	if got, want := cell.Grapheme(ct), "é"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	// Without the table that produced it, a sentinel can't be resolved.
	if got := cell.Grapheme(nil); got != string(sentinel) {
		t.Errorf("expected raw sentinel rune with nil table, got %q", got)
	}
}

func TestCellWidth(t *testing.T) {
	ct := newComposeTable()
	sentinel := ct.Intern('e', []rune{0x0301})

	plain := NewCell()
	plain.Char = 'e'
	if w := plain.Width(ct); w != 1 {
		t.Errorf("expected width 1 for plain rune, got %d", w)
	}

	composed := NewCell()
	composed.Char = sentinel
	if w := composed.Width(ct); w != 1 {
		t.Errorf("expected composed base rune width 1, got %d", w)
	}

	wide := NewCell()
	wide.SetFlag(CellFlagWideChar)
	if w := wide.Width(ct); w != 2 {
		t.Errorf("expected wide cell width 2, got %d", w)
	}

	spacer := NewCell()
	spacer.SetFlag(CellFlagWideCharSpacer)
	if w := spacer.Width(ct); w != 0 {
		t.Errorf("expected spacer width 0, got %d", w)
	}
}

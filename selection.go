package vtcore

import "time"

// SelectionKind distinguishes the unit a selection extends by.
type SelectionKind int

const (
	// SelectionNone means no selection is active.
	SelectionNone SelectionKind = iota
	// SelectionChar selects individual characters between Start and End.
	SelectionChar
	// SelectionWord extends the selection to whole words at both ends.
	SelectionWord
	// SelectionLine extends the selection to whole lines at both ends.
	SelectionLine
	// SelectionBlock selects a rectangular column range independent of row length.
	SelectionBlock
)

// SelectionDirection records which end of the selection the user last moved,
// so that continuing a drag extends the correct end.
type SelectionDirection int

const (
	// DirectionForward means Start was the anchor and End is the moving edge.
	DirectionForward SelectionDirection = iota
	// DirectionBackward means End was the anchor and Start is the moving edge.
	DirectionBackward
)

// defaultWordDelimiters separates "words" for SelectionWord extension and
// double-click selection; mirrors the common xterm/foot default set.
const defaultWordDelimiters = " \t\n\"'`()[]{}<>,;:"

// Selection defines a text region in the terminal.
// Start and End are always normalized so Start is before or equal to End;
// Direction records which of the two is the anchor.
type Selection struct {
	Kind      SelectionKind
	Direction SelectionDirection
	Start     Position
	End       Position
	Active    bool
	Ongoing   bool
}

// isWordDelimiter reports whether r separates words for selection purposes.
func isWordDelimiter(r rune, delims string) bool {
	for _, d := range delims {
		if r == d {
			return true
		}
	}
	return false
}

// SetSelection sets the active text selection region as a plain character
// selection. Start and end are automatically normalized so start is before
// or equal to end.
func (t *Terminal) SetSelection(start, end Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if end.Before(start) {
		start, end = end, start
	}

	t.selection = Selection{
		Kind:   SelectionChar,
		Start:  start,
		End:    end,
		Active: true,
	}
}

// StartSelection begins a new selection of the given kind anchored at pos.
// Word and line selections are immediately extended to their natural bounds.
func (t *Terminal) StartSelection(pos Position, kind SelectionKind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.selection = Selection{
		Kind:    kind,
		Start:   pos,
		End:     pos,
		Active:  true,
		Ongoing: true,
	}
	t.extendSelectionInternal(pos)
}

// ExtendSelection moves the selection's moving edge to pos, widening or
// narrowing the selected range according to Kind.
func (t *Terminal) ExtendSelection(pos Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.selection.Active {
		return
	}
	t.extendSelectionInternal(pos)
}

func (t *Terminal) extendSelectionInternal(pos Position) {
	sel := &t.selection

	anchor := sel.Start
	if sel.Direction == DirectionBackward {
		anchor = sel.End
	}

	start, end := anchor, pos
	dir := DirectionForward
	if end.Before(start) {
		start, end = end, start
		dir = DirectionBackward
	}

	switch sel.Kind {
	case SelectionWord:
		start = t.wordStartInternal(start)
		end = t.wordEndInternal(end)
	case SelectionLine:
		start.Col = 0
		end.Col = t.cols - 1
	}

	sel.Start = start
	sel.End = end
	sel.Direction = dir
}

func (t *Terminal) wordStartInternal(pos Position) Position {
	for pos.Col > 0 {
		cell := t.activeBuffer.Cell(pos.Row, pos.Col-1)
		if cell == nil || isWordDelimiter(cell.Char, defaultWordDelimiters) {
			break
		}
		pos.Col--
	}
	return pos
}

func (t *Terminal) wordEndInternal(pos Position) Position {
	for pos.Col < t.cols-1 {
		cell := t.activeBuffer.Cell(pos.Row, pos.Col+1)
		if cell == nil || isWordDelimiter(cell.Char, defaultWordDelimiters) {
			break
		}
		pos.Col++
	}
	return pos
}

// EndSelection finalizes an in-progress selection, leaving it active but no
// longer ongoing (no further auto-scroll or live extension).
func (t *Terminal) EndSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Ongoing = false
}

// ClearSelection deactivates the current selection.
func (t *Terminal) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection = Selection{}
}

// cancelSelectionOnMutation clears the selection if the grid changed under
// it (scroll, resize, alt-screen swap) since a stale selection could
// reference content that no longer matches what it highlights.
func (t *Terminal) cancelSelectionOnMutation() {
	if t.selection.Active {
		t.selection = Selection{}
	}
}

// GetSelection returns the current selection state.
func (t *Terminal) GetSelection() Selection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection
}

// HasSelection returns true if a selection is currently active.
func (t *Terminal) HasSelection() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection.Active
}

// IsSelected returns true if the cell at (row, col) is within the active selection.
func (t *Terminal) IsSelected(row, col int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isSelectedInternal(row, col)
}

func (t *Terminal) isSelectedInternal(row, col int) bool {
	sel := t.selection
	if !sel.Active {
		return false
	}

	if sel.Kind == SelectionBlock {
		lo, hi := sel.Start.Col, sel.End.Col
		if hi < lo {
			lo, hi = hi, lo
		}
		return row >= sel.Start.Row && row <= sel.End.Row && col >= lo && col <= hi
	}

	pos := Position{Row: row, Col: col}
	if pos.Before(sel.Start) {
		return false
	}
	if sel.End.Before(pos) {
		return false
	}
	return true
}

// GetSelectedText extracts and returns the text content within the active selection.
// Empty cells are converted to spaces, and newlines separate rows.
func (t *Terminal) GetSelectedText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sel := t.selection
	if !sel.Active {
		return ""
	}

	start := sel.Start
	end := sel.End

	var result []rune

	for row := start.Row; row <= end.Row && row < t.rows; row++ {
		startCol := 0
		endCol := t.cols

		if sel.Kind == SelectionBlock {
			startCol, endCol = start.Col, end.Col+1
		} else {
			if row == start.Row {
				startCol = start.Col
			}
			if row == end.Row {
				endCol = end.Col + 1
			}
		}

		for col := startCol; col < endCol && col < t.cols; col++ {
			cell := t.activeBuffer.Cell(row, col)
			if cell != nil && !cell.IsWideSpacer() {
				if cell.Char == 0 {
					result = append(result, ' ')
				} else {
					result = append(result, cell.Char)
				}
			}
		}

		if row < end.Row {
			result = append(result, '\n')
		}
	}

	return string(result)
}

// SelectionAutoScroller drives auto-scroll while a selection drag holds the
// pointer past the top or bottom edge of the viewport. The ticker period
// shrinks as the pointer moves further past the edge, matching common
// terminal UI behavior; callers pass the pointer's row distance past the
// edge (positive values only) to NewSelectionAutoScroller.
type SelectionAutoScroller struct {
	ticker *time.Ticker
}

// NewSelectionAutoScroller starts an auto-scroll ticker that calls step for
// each tick until Stop is called.
func NewSelectionAutoScroller(rowsPastEdge int, step func()) *SelectionAutoScroller {
	period := autoScrollPeriod(rowsPastEdge)
	s := &SelectionAutoScroller{ticker: time.NewTicker(period)}
	go func() {
		for range s.ticker.C {
			step()
		}
	}()
	return s
}

// Stop halts the auto-scroll ticker.
func (s *SelectionAutoScroller) Stop() {
	s.ticker.Stop()
}

// autoScrollPeriod returns a tick interval that shortens as the pointer
// moves further past the viewport edge, floored at 16ms.
func autoScrollPeriod(rowsPastEdge int) time.Duration {
	if rowsPastEdge < 1 {
		rowsPastEdge = 1
	}
	period := 200 * time.Millisecond / time.Duration(rowsPastEdge)
	if period < 16*time.Millisecond {
		period = 16 * time.Millisecond
	}
	return period
}

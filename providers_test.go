package vtcore

import "testing"

func TestNoopResponseDiscardsWrites(t *testing.T) {
	var r NoopResponse
	n, err := r.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 bytes reported written, got %d", n)
	}
}

func TestNoopClipboardRoundTrip(t *testing.T) {
	var c NoopClipboard
	c.Write('c', []byte("ignored"))
	if got := c.Read('c'); got != "" {
		t.Errorf("expected empty clipboard content, got %q", got)
	}
}

func TestNoopScrollbackDiscardsLines(t *testing.T) {
	var s NoopScrollback
	s.Push([]Cell{{Char: 'x'}})
	if s.Len() != 0 {
		t.Errorf("expected 0 stored lines, got %d", s.Len())
	}
	if s.Line(0) != nil {
		t.Error("expected Line to return nil")
	}
	s.SetMaxLines(10)
	if s.MaxLines() != 0 {
		t.Errorf("expected MaxLines to stay 0 regardless of SetMaxLines, got %d", s.MaxLines())
	}
}

func TestNoopRecordingDiscardsData(t *testing.T) {
	var r NoopRecording
	r.Record([]byte("input"))
	if r.Data() != nil {
		t.Error("expected nil recorded data")
	}
}

func TestScrollbackProviderInterface(t *testing.T) {
	// testScrollback (terminal_test.go) is the ScrollbackProvider this
	// package's own tests exercise in place of NoopScrollback; confirm it
	// satisfies the interface and trims the way a real implementation must.
	var _ ScrollbackProvider = (*testScrollback)(nil)

	s := &testScrollback{}
	s.SetMaxLines(2)

	s.Push([]Cell{{Char: 'a'}})
	s.Push([]Cell{{Char: 'b'}})
	s.Push([]Cell{{Char: 'c'}})

	if s.Len() != 2 {
		t.Fatalf("expected trimming to 2 lines, got %d", s.Len())
	}
	if s.Line(0)[0].Char != 'b' {
		t.Errorf("expected oldest retained line to start with 'b', got %q", s.Line(0)[0].Char)
	}
}

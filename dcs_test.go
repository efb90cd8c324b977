package vtcore

import "testing"

func TestWriteFilteredRecognizesBSUESU(t *testing.T) {
	term := New(WithSize(3, 10))

	if term.SyncUpdateActive() {
		t.Fatal("expected sync-update inactive initially")
	}

	term.WriteString("\x1bP=1s\x1b\\")
	if !term.SyncUpdateActive() {
		t.Error("expected sync-update active after BSU")
	}
	if term.PresentAllowed() {
		t.Error("expected PresentAllowed=false during sync-update")
	}

	term.WriteString("\x1bP=2s\x1b\\")
	if term.SyncUpdateActive() {
		t.Error("expected sync-update inactive after ESU")
	}
	if !term.PresentAllowed() {
		t.Error("expected PresentAllowed=true after ESU")
	}
}

func TestWriteFilteredSplitAcrossWrites(t *testing.T) {
	term := New(WithSize(3, 10))

	seq := "\x1bP=1s\x1b\\"
	for i := 0; i < len(seq); i++ {
		term.WriteString(seq[i : i+1])
	}

	if !term.SyncUpdateActive() {
		t.Error("expected sync-update active after BSU delivered one byte at a time")
	}
}

func TestWriteFilteredPassesThroughPlainText(t *testing.T) {
	term := New(WithSize(3, 10))

	term.WriteString("hello\x1bP=1s\x1b\\world")

	if term.LineContent(0) != "helloworld" {
		t.Errorf("LineContent = %q, want %q", term.LineContent(0), "helloworld")
	}
}

func TestWriteFilteredDoesNotConsumeSixelDCS(t *testing.T) {
	term := New(WithSize(3, 10))

	// A real Sixel DCS sequence diverges from the sync-update pattern at
	// the byte right after ESC P (a parameter digit here, never '='), so
	// the sniffer must abort and let it reach the decoder untouched
	// rather than swallowing it as a partial BSU match.
	term.WriteString("\x1bP0;1q#0;2;0;0;0-\x1b\\")

	if term.SyncUpdateActive() {
		t.Error("a Sixel DCS sequence must never be mistaken for BSU")
	}
}

func TestMiddlewareSyncUpdateHooksFire(t *testing.T) {
	term := New(WithSize(3, 10))

	var began, ended bool
	term.SetMiddleware(&Middleware{
		SyncUpdateBegin: func(next func()) {
			began = true
			next()
		},
		SyncUpdateEnd: func(next func()) {
			ended = true
			next()
		},
	})

	term.WriteString("\x1bP=1s\x1b\\")
	if !began {
		t.Error("expected SyncUpdateBegin middleware hook to fire")
	}
	if !term.SyncUpdateActive() {
		t.Error("expected sync-update active after middleware calls next()")
	}

	term.WriteString("\x1bP=2s\x1b\\")
	if !ended {
		t.Error("expected SyncUpdateEnd middleware hook to fire")
	}
	if term.SyncUpdateActive() {
		t.Error("expected sync-update inactive after middleware calls next()")
	}
}

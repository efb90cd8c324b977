// Command vtdemo drives a vtcore.Terminal from a real pseudoterminal,
// exercising the full decode/grid/render pipeline end to end without a
// Wayland compositor attached: it spawns a shell, feeds its output into
// a Terminal, and periodically dumps the screen to standard output when
// rows have changed.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"github.com/creack/pty"

	"github.com/wl-term/vtcore"
	"github.com/wl-term/vtcore/render"
	"github.com/wl-term/vtcore/shm"
)

const cellPixels = 8 // synthetic per-cell pixel width/height, no real font rasterization here

func main() {
	var (
		rows   = flag.Int("rows", 24, "terminal rows")
		cols   = flag.Int("cols", 80, "terminal columns")
		term   = flag.String("term", "xterm-256color", "TERM value for the spawned shell")
		shell  = flag.String("shell", "", "shell to spawn (defaults to $SHELL or /bin/sh)")
		period = flag.Duration("period", 250*time.Millisecond, "grid dump interval")
	)
	flag.Parse()

	shellPath := *shell
	if shellPath == "" {
		shellPath = os.Getenv("SHELL")
	}
	if shellPath == "" {
		shellPath = "/bin/sh"
	}

	cmd := exec.Command(shellPath)
	cmd.Env = append(os.Environ(),
		"TERM="+*term,
		"COLORTERM=truecolor",
	)
	if wd, err := os.Getwd(); err == nil {
		cmd.Env = append(cmd.Env, "PWD="+wd)
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(*rows), Cols: uint16(*cols)})
	if err != nil {
		log.Fatalf("vtdemo: failed to start shell: %v", err)
	}
	defer ptmx.Close()

	vt := vtcore.New(
		vtcore.WithSize(*rows, *cols),
		vtcore.WithResponse(ptmx),
	)

	reaper := &processReaper{cmd: cmd}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	fdm, err := newPtyMultiplexer(int(ptmx.Fd()))
	if err != nil {
		log.Fatalf("vtdemo: fdm: %v", err)
	}
	defer fdm.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		for {
			ready, err := fdm.Wait()
			if err != nil {
				log.Printf("vtdemo: poll error: %v", err)
				return
			}
			for _, fd := range ready {
				if fd != int(ptmx.Fd()) {
					continue
				}
				n, err := ptmx.Read(buf)
				if n > 0 {
					vt.Write(buf[:n])
				}
				if err != nil {
					if err != io.EOF {
						log.Printf("vtdemo: pty read error: %v", err)
					}
					return
				}
			}
		}
	}()

	ticker := time.NewTicker(*period)
	defer ticker.Stop()

	pool := render.NewPool(4)
	ctx := context.Background()

	shmPool, err := shm.DefaultFactory{}.CreatePool("", 0)
	if err != nil {
		log.Fatalf("vtdemo: shm pool: %v", err)
	}
	defer shmPool.Close()

	frameBuf, err := shmPool.NewBuffer(*cols*cellPixels, *rows*cellPixels, true)
	if err != nil {
		log.Fatalf("vtdemo: shm buffer: %v", err)
	}

	for {
		select {
		case <-done:
			code, _ := reaper.Wait()
			os.Exit(code)
		case <-sig:
			cmd.Process.Signal(os.Interrupt)
			fdm.wake()
		case <-ticker.C:
			if !vt.PresentAllowed() {
				continue
			}
			dirtyRows := dirtyRowSet(vt)
			if len(dirtyRows) == 0 {
				continue
			}
			writer := &rowWriter{term: vt, frame: frameBuf}
			if err := pool.RenderRows(ctx, dirtyRows, writer); err != nil {
				log.Printf("vtdemo: render error: %v", err)
			}
			dumpFrame(frameBuf, *cols)
			vt.ClearDirty()
		}
	}
}

// dirtyRowSet collapses the terminal's per-cell dirty list into the
// distinct row indices a render pass needs to touch.
func dirtyRowSet(vt *vtcore.Terminal) []int {
	seen := make(map[int]bool)
	var rows []int
	for _, pos := range vt.DirtyCells() {
		if !seen[pos.Row] {
			seen[pos.Row] = true
			rows = append(rows, pos.Row)
		}
	}
	return rows
}

// processReaper adapts an *exec.Cmd to render.Reaper.
type processReaper struct {
	cmd *exec.Cmd
}

func (r *processReaper) Wait() (int, error) {
	err := r.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

var _ render.Reaper = (*processReaper)(nil)

// rowWriter rasterizes one grid row's cells into the shared-memory frame
// buffer: each cell becomes a cellPixels x cellPixels solid block tinted
// by whether the cell holds a printable glyph, standing in for the glyph
// rasterization a real font renderer would do above this package.
type rowWriter struct {
	term  *vtcore.Terminal
	frame *shm.Buffer
}

func (w *rowWriter) RenderRow(ctx context.Context, row int) error {
	cols := w.term.Cols()
	pixels := w.frame.Pixels()
	stride := w.frame.Stride()

	for col := 0; col < cols; col++ {
		cell := w.term.Cell(row, col)

		var r, g, b byte
		if cell != nil && cell.Char != 0 && cell.Char != ' ' {
			r, g, b = 0xd0, 0xd0, 0xd0
		}

		for py := 0; py < cellPixels; py++ {
			lineOff := (row*cellPixels+py)*stride + col*cellPixels*4
			for px := 0; px < cellPixels; px++ {
				off := lineOff + px*4
				pixels[off+0] = b
				pixels[off+1] = g
				pixels[off+2] = r
				pixels[off+3] = 0xff
			}
		}
	}
	return nil
}

var _ render.Renderer = (*rowWriter)(nil)

// dumpFrame prints a crude ASCII rendition of the shared-memory frame
// buffer to standard output, since this demo has no compositor to
// present the real pixels to.
func dumpFrame(frame *shm.Buffer, cols int) {
	pixels := frame.Pixels()
	stride := frame.Stride()
	rows := frame.Height() / cellPixels

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			off := (row*cellPixels)*stride + col*cellPixels*4
			if pixels[off+2] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	os.Stdout.WriteString(sb.String())
}

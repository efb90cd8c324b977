package shm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pageSize is assumed rather than queried per-buffer; offsets are always
// rounded up to it so punched holes land on page boundaries.
const pageSize = 4096

// Buffer is a single rectangular pixel region living at some offset inside
// a Pool's mapping. Pixels is a zero-copy view into the pool's mmap; the
// caller writes ARGB8888 (or whatever format it told the compositor)
// directly into it.
type Buffer struct {
	pool   *Pool
	width  int
	height int
	stride int
	size   int64

	offset     int64
	scrollable bool
}

// NewBuffer carves out a width x height (4 bytes/pixel) buffer in pool's
// mapping: at its start, or a quarter of the way in for a scrollable
// buffer. scrollable requests the hole-punch scroll path; it is
// silently downgraded to false if the pool can't punch holes, or if
// scrolling would need more headroom than maxSize allows.
func (p *Pool) NewBuffer(width, height int, scrollable bool) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("shm: invalid buffer size %dx%d", width, height)
	}
	stride := width * 4
	size := int64(stride) * int64(height)

	if scrollable && (!p.canPunch || size*2 > p.maxSize) {
		scrollable = false
	}

	// A scrollable buffer starts a quarter of the way into the pool so a
	// forward scroll has room to advance before needing to wrap, and a
	// reverse scroll (terminal alt-scrolled back up) has room to retreat.
	var offset int64
	if scrollable {
		offset = (p.maxSize / 4) &^ (pageSize - 1)
	}

	if offset+size > p.maxSize {
		return nil, fmt.Errorf("shm: buffer of size %d does not fit pool of size %d", size, p.maxSize)
	}

	return &Buffer{
		pool:       p,
		width:      width,
		height:     height,
		stride:     stride,
		size:       size,
		offset:     offset,
		scrollable: scrollable,
	}, nil
}

// Width, Height, Stride describe the buffer's pixel geometry.
func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }
func (b *Buffer) Stride() int { return b.stride }

// Offset is the buffer's current byte offset into the pool's fd, for
// constructing a wl_shm_pool_create_buffer call.
func (b *Buffer) Offset() int64 { return b.offset }

// Scrollable reports whether this buffer uses the hole-punch scroll path.
func (b *Buffer) Scrollable() bool { return b.scrollable }

// Pixels returns the buffer's current backing slice, sized height*stride
// bytes. The slice is only valid until the next Scroll call, which may
// relocate the buffer to a different offset.
func (b *Buffer) Pixels() []byte {
	return b.pool.mapped[b.offset : b.offset+b.size]
}

// Scroll shifts the buffer's content by rows rows (positive: content moves
// up, as after new lines appended at the bottom; negative: content moves
// down, as when scrolling back into history). topMargin/topKeepRows and
// bottomMargin/bottomKeepRows describe rows excluded from the scroll (e.g.
// a non-scrolling region) at the top and bottom of the buffer,
// respectively, and are preserved by an explicit copy rather than the
// hole-punch relocation.
//
// When the buffer isn't scrollable, Scroll does a plain in-place copy
// instead - still correct, just without the hole-punch cost savings. A
// rows of 0 does nothing.
func (b *Buffer) Scroll(rows, topMargin, topKeepRows, bottomMargin, bottomKeepRows int) error {
	if rows == 0 {
		return nil
	}
	if !b.scrollable {
		return b.scrollInPlace(rows, topMargin, topKeepRows, bottomMargin, bottomKeepRows)
	}
	if rows > 0 {
		return b.scrollForward(rows, topMargin, topKeepRows, bottomMargin, bottomKeepRows)
	}
	return b.scrollReverse(-rows, topMargin, topKeepRows, bottomMargin, bottomKeepRows)
}

// scrollInPlace moves rows*stride bytes within the existing mapping via a
// plain copy, used when hole-punch scrolling isn't available.
func (b *Buffer) scrollInPlace(rows, topMargin, topKeepRows, bottomMargin, bottomKeepRows int) error {
	buf := b.Pixels()
	diff := rows * b.stride
	if diff >= len(buf) || -diff >= len(buf) {
		return fmt.Errorf("shm: scroll of %d rows exceeds buffer height", rows)
	}

	if rows > 0 {
		if topKeepRows > 0 {
			src := (topMargin) * b.stride
			dst := (topMargin + rows) * b.stride
			copy(buf[dst:dst+topKeepRows*b.stride], buf[src:src+topKeepRows*b.stride])
		}
		copy(buf, buf[diff:])
		if bottomKeepRows > 0 {
			dst := len(buf) - (bottomMargin+bottomKeepRows)*b.stride
			src := dst - diff
			copy(buf[dst:dst+bottomKeepRows*b.stride], buf[src:src+bottomKeepRows*b.stride])
		}
	} else {
		diff = -diff
		if bottomKeepRows > 0 {
			src := len(buf) - (bottomMargin+bottomKeepRows)*b.stride
			dst := src - diff
			copy(buf[dst:dst+bottomKeepRows*b.stride], buf[src:src+bottomKeepRows*b.stride])
		}
		copyBackward(buf, diff, 0, len(buf)-diff)
		if topKeepRows > 0 {
			dst := topMargin * b.stride
			src := dst + diff
			copy(buf[dst:dst+topKeepRows*b.stride], buf[src:src+topKeepRows*b.stride])
		}
	}
	return nil
}

// copyBackward copies n bytes from buf[src:src+n] to buf[dst:dst+n],
// safe for overlapping forward-moving ranges (copies high-to-low).
func copyBackward(buf []byte, dst, src, n int) {
	for i := n - 1; i >= 0; i-- {
		buf[dst+i] = buf[src+i]
	}
}

// scrollForward implements the append-new-lines-at-bottom case: the
// window slides toward higher offsets in the memfd, and everything below
// the old window (down to offset 0) is punched out since it will never be
// read again before being overwritten.
func (b *Buffer) scrollForward(rows, topMargin, topKeepRows, bottomMargin, bottomKeepRows int) error {
	diff := int64(rows) * int64(b.stride)
	if diff >= b.size {
		return fmt.Errorf("shm: scroll of %d rows exceeds buffer height", rows)
	}

	newOffset := b.offset + diff
	if newOffset+b.size > b.pool.maxSize {
		if err := b.wrap(0); err != nil {
			return err
		}
		newOffset = diff
	}

	buf := b.pool.mapped
	if topKeepRows > 0 {
		srcOff := b.offset + int64(topMargin)*int64(b.stride)
		dstOff := b.offset + int64(topMargin+rows)*int64(b.stride)
		copy(buf[dstOff:dstOff+int64(topKeepRows)*int64(b.stride)], buf[srcOff:srcOff+int64(topKeepRows)*int64(b.stride)])
	}

	if err := unix.Fallocate(b.pool.fd, unix.FALLOC_FL_PUNCH_HOLE|unix.FALLOC_FL_KEEP_SIZE, 0, newOffset); err != nil {
		return fmt.Errorf("shm: punch hole: %w", err)
	}

	b.offset = newOffset

	if bottomKeepRows > 0 {
		base := b.offset + b.size
		dstOff := base - int64(bottomMargin+bottomKeepRows)*int64(b.stride)
		srcOff := base - int64(bottomMargin+rows+bottomKeepRows)*int64(b.stride)
		copy(buf[dstOff:dstOff+int64(bottomKeepRows)*int64(b.stride)], buf[srcOff:srcOff+int64(bottomKeepRows)*int64(b.stride)])
	}

	return nil
}

// scrollReverse implements the scroll-back-into-history case: the window
// slides toward lower offsets, and everything above the new window is
// punched out.
func (b *Buffer) scrollReverse(rows, topMargin, topKeepRows, bottomMargin, bottomKeepRows int) error {
	diff := int64(rows) * int64(b.stride)
	if diff >= b.size {
		return fmt.Errorf("shm: scroll of %d rows exceeds buffer height", rows)
	}

	newOffset := b.offset - diff
	if newOffset < 0 {
		if err := b.wrap(b.pool.maxSize - b.size); err != nil {
			return err
		}
		newOffset = b.offset - diff
	}

	buf := b.pool.mapped
	if bottomKeepRows > 0 {
		base := b.offset + b.size
		srcOff := base - int64(bottomMargin+bottomKeepRows)*int64(b.stride)
		dstOff := srcOff - diff
		copy(buf[dstOff:dstOff+int64(bottomKeepRows)*int64(b.stride)], buf[srcOff:srcOff+int64(bottomKeepRows)*int64(b.stride)])
	}

	trimOfs := newOffset + b.size
	trimLen := b.pool.maxSize - trimOfs
	if err := unix.Fallocate(b.pool.fd, unix.FALLOC_FL_PUNCH_HOLE|unix.FALLOC_FL_KEEP_SIZE, trimOfs, trimLen); err != nil {
		return fmt.Errorf("shm: punch hole: %w", err)
	}

	b.offset = newOffset

	if topKeepRows > 0 {
		srcOff := b.offset + diff + int64(topMargin)*int64(b.stride)
		dstOff := b.offset + int64(topMargin)*int64(b.stride)
		copy(buf[dstOff:dstOff+int64(topKeepRows)*int64(b.stride)], buf[srcOff:srcOff+int64(topKeepRows)*int64(b.stride)])
	}

	return nil
}

// wrap relocates the buffer's content to newOffset and punches out
// everything else, used when a scroll would otherwise walk off either end
// of the pool's address range.
func (b *Buffer) wrap(newOffset int64) error {
	buf := b.pool.mapped
	copy(buf[newOffset:newOffset+b.size], buf[b.offset:b.offset+b.size])

	var trimOfs, trimLen int64
	if newOffset > b.offset {
		trimOfs, trimLen = 0, newOffset
	} else {
		trimOfs = newOffset + b.size
		trimLen = b.pool.maxSize - trimOfs
	}
	if trimLen > 0 {
		if err := unix.Fallocate(b.pool.fd, unix.FALLOC_FL_PUNCH_HOLE|unix.FALLOC_FL_KEEP_SIZE, trimOfs, trimLen); err != nil {
			return fmt.Errorf("shm: wrap punch hole: %w", err)
		}
	}
	b.offset = newOffset
	return nil
}

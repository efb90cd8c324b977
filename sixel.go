package vtcore

import (
	"image/color"
)

// SixelImage represents a decoded Sixel image.
type SixelImage struct {
	Width       uint32
	Height      uint32
	Data        []byte // RGBA pixel data
	Transparent bool   // Whether background is transparent
}

// sixelState names a state in the DECSIXEL byte-stream state machine.
// A sixel DCS payload is decoded one byte at a time rather than scanned as
// a whole buffer, so a half-received color or repeat introducer left at
// the end of one DCS-put chunk resumes correctly when the next chunk (or
// the final Close) arrives.
type sixelState int

const (
	sixelStateData sixelState = iota
	sixelStateRepeatCount  // after '!', accumulating the repeat count
	sixelStateColorNum     // after '#', accumulating the color register number
	sixelStateColorType    // after '#N;', accumulating the color-space selector
	sixelStateColorV1
	sixelStateColorV2
	sixelStateColorV3
	sixelStateRaster // after '"', skipping raster-attribute parameters
)

// sixelParser is the persistent state of the streaming DECSIXEL/DECGRA/
// DECGRI/DECGCI decoder. Feed is called once per input byte; decoding
// never requires looking ahead or rewinding.
type sixelParser struct {
	palette     [256]color.RGBA
	colorIndex  int
	x, y        int
	maxX, maxY  int
	pixels      map[int]map[int]color.RGBA
	transparent bool

	state      sixelState
	numAccum   int64
	repeatN    int64
	colorNum   int64
	colorType  int64
	colorV1    int64
	colorV2    int64
}

// NewSixelDecoder creates a streaming Sixel decoder. transparent corresponds
// to DCS parameter P2 == 1 (background color select: leave unpainted
// pixels transparent instead of filling with color register 0).
func NewSixelDecoder(transparent bool) *sixelParser {
	p := &sixelParser{
		pixels:      make(map[int]map[int]color.RGBA),
		transparent: transparent,
	}
	p.initDefaultPalette()
	return p
}

// Feed advances the decoder by one byte of DECSIXEL payload data.
func (p *sixelParser) Feed(b byte) {
	switch p.state {
	case sixelStateRepeatCount:
		if b >= '0' && b <= '9' {
			p.numAccum = p.numAccum*10 + int64(b-'0')
			return
		}
		p.repeatN = p.numAccum
		p.state = sixelStateData
		if b >= '?' && b <= '~' {
			p.drawSixel(b, int(p.repeatN))
			return
		}
		p.Feed(b)
		return

	case sixelStateColorNum:
		if b >= '0' && b <= '9' {
			p.numAccum = p.numAccum*10 + int64(b-'0')
			return
		}
		p.colorNum = p.numAccum
		if b == ';' {
			p.numAccum = 0
			p.state = sixelStateColorType
			return
		}
		p.finishColorSelect()
		p.state = sixelStateData
		p.Feed(b)
		return

	case sixelStateColorType:
		if b >= '0' && b <= '9' {
			p.numAccum = p.numAccum*10 + int64(b-'0')
			return
		}
		p.colorType = p.numAccum
		p.numAccum = 0
		if b == ';' {
			p.state = sixelStateColorV1
			return
		}
		p.finishColorSelect()
		p.state = sixelStateData
		p.Feed(b)
		return

	case sixelStateColorV1:
		if b >= '0' && b <= '9' {
			p.numAccum = p.numAccum*10 + int64(b-'0')
			return
		}
		p.colorV1 = p.numAccum
		p.numAccum = 0
		if b == ';' {
			p.state = sixelStateColorV2
			return
		}
		p.finishColorDefine()
		p.state = sixelStateData
		p.Feed(b)
		return

	case sixelStateColorV2:
		if b >= '0' && b <= '9' {
			p.numAccum = p.numAccum*10 + int64(b-'0')
			return
		}
		p.colorV2 = p.numAccum
		p.numAccum = 0
		if b == ';' {
			p.state = sixelStateColorV3
			return
		}
		p.finishColorDefine()
		p.state = sixelStateData
		p.Feed(b)
		return

	case sixelStateColorV3:
		if b >= '0' && b <= '9' {
			p.numAccum = p.numAccum*10 + int64(b-'0')
			return
		}
		p.finishColorDefine(withV3(p.numAccum))
		p.numAccum = 0
		p.state = sixelStateData
		p.Feed(b)
		return

	case sixelStateRaster:
		if b == '$' || b == '-' || b == '#' || b == '!' || (b >= '?' && b <= '~') {
			p.state = sixelStateData
			p.Feed(b)
		}
		return
	}

	// sixelStateData
	switch {
	case b == '$':
		p.x = 0
	case b == '-':
		p.x = 0
		p.y += 6
	case b == '!':
		p.numAccum = 0
		p.state = sixelStateRepeatCount
	case b == '#':
		p.numAccum = 0
		p.state = sixelStateColorNum
	case b == '"':
		p.state = sixelStateRaster
	case b >= '?' && b <= '~':
		p.drawSixel(b, 1)
	}
}

// finishColorSelect handles "#N" with no color definition following:
// selects color register N for subsequent sixel characters.
func (p *sixelParser) finishColorSelect() {
	if p.colorNum >= 0 && p.colorNum < 256 {
		p.colorIndex = int(p.colorNum)
	}
}

type colorDefineOpt func(*sixelParser)

func withV3(v int64) colorDefineOpt {
	return func(p *sixelParser) { p.finishColorDefineWithV3(v) }
}

func (p *sixelParser) finishColorDefine(opts ...colorDefineOpt) {
	for _, o := range opts {
		o(p)
	}
}

func (p *sixelParser) finishColorDefineWithV3(v3 int64) {
	if p.colorNum < 0 || p.colorNum >= 256 {
		return
	}
	if p.colorType == 1 {
		p.palette[p.colorNum] = hlsToRGB(int(p.colorV1), int(p.colorV2), int(v3))
	} else {
		r := uint8(p.colorV1 * 255 / 100)
		g := uint8(p.colorV2 * 255 / 100)
		b := uint8(v3 * 255 / 100)
		p.palette[p.colorNum] = color.RGBA{r, g, b, 255}
	}
	p.colorIndex = int(p.colorNum)
}

// Close finalizes decoding and returns the assembled image. A color
// register selection (#N) still pending at end of stream is applied first;
// an unterminated repeat count or color definition is dropped.
func (p *sixelParser) Close() *SixelImage {
	switch p.state {
	case sixelStateColorNum:
		p.colorNum = p.numAccum
		p.finishColorSelect()
	case sixelStateColorV1, sixelStateColorV2, sixelStateColorV3:
		// Incomplete color definition at end of stream: nothing further
		// to apply, the register keeps its previous value.
	}
	return p.toImage()
}

// ParseSixel decodes a complete Sixel payload in one call. params contains
// the DCS parameters (P1;P2;P3); data contains the raw bytes after 'q'.
// Equivalent to feeding every byte of data to a NewSixelDecoder and
// calling Close, provided as a convenience for callers that already have
// the whole payload buffered.
func ParseSixel(params []int64, data []byte) (*SixelImage, error) {
	transparent := len(params) >= 2 && params[1] == 1
	p := NewSixelDecoder(transparent)
	for _, b := range data {
		p.Feed(b)
	}
	return p.Close(), nil
}

// initDefaultPalette sets up the default VGA 16-color palette.
func (p *sixelParser) initDefaultPalette() {
	// Standard VGA colors
	vgaColors := []color.RGBA{
		{0, 0, 0, 255},       // 0: Black
		{0, 0, 205, 255},     // 1: Blue
		{205, 0, 0, 255},     // 2: Red
		{205, 0, 205, 255},   // 3: Magenta
		{0, 205, 0, 255},     // 4: Green
		{0, 205, 205, 255},   // 5: Cyan
		{205, 205, 0, 255},   // 6: Yellow
		{205, 205, 205, 255}, // 7: White
		{0, 0, 0, 255},       // 8: Black (repeat for HLS)
		{0, 0, 255, 255},     // 9: Bright Blue
		{255, 0, 0, 255},     // 10: Bright Red
		{255, 0, 255, 255},   // 11: Bright Magenta
		{0, 255, 0, 255},     // 12: Bright Green
		{0, 255, 255, 255},   // 13: Bright Cyan
		{255, 255, 0, 255},   // 14: Bright Yellow
		{255, 255, 255, 255}, // 15: Bright White
	}

	copy(p.palette[:], vgaColors)

	// Fill remaining with grayscale
	for i := 16; i < 256; i++ {
		gray := uint8((i - 16) * 255 / 239)
		p.palette[i] = color.RGBA{gray, gray, gray, 255}
	}
}

// drawSixel draws a sixel character at the current position.
// A sixel represents 6 vertical pixels encoded in 6 bits.
func (p *sixelParser) drawSixel(b byte, count int) {
	if count <= 0 {
		count = 1
	}

	// Convert from sixel encoding (?-~ maps to 0-63)
	bits := b - '?'

	c := p.palette[p.colorIndex]

	for r := 0; r < count; r++ {
		// Each bit represents a vertical pixel (bit 0 = top)
		for bit := 0; bit < 6; bit++ {
			if bits&(1<<bit) != 0 {
				py := p.y + bit
				px := p.x

				if p.pixels[py] == nil {
					p.pixels[py] = make(map[int]color.RGBA)
				}
				p.pixels[py][px] = c

				if px > p.maxX {
					p.maxX = px
				}
				if py > p.maxY {
					p.maxY = py
				}
			}
		}
		p.x++
	}
}

// toImage converts the parsed pixels to an RGBA image.
func (p *sixelParser) toImage() *SixelImage {
	// No pixels drawn
	if len(p.pixels) == 0 {
		return &SixelImage{
			Width:  0,
			Height: 0,
			Data:   nil,
		}
	}

	width := uint32(p.maxX + 1)
	height := uint32(p.maxY + 1)

	// Allocate RGBA buffer
	data := make([]byte, width*height*4)

	// Fill with transparent or background color
	if p.transparent {
		// Leave as zero (transparent)
	} else {
		// Fill with color 0 (background)
		bg := p.palette[0]
		for i := uint32(0); i < width*height; i++ {
			data[i*4+0] = bg.R
			data[i*4+1] = bg.G
			data[i*4+2] = bg.B
			data[i*4+3] = bg.A
		}
	}

	// Copy pixels
	for y, row := range p.pixels {
		for x, c := range row {
			if x >= 0 && x < int(width) && y >= 0 && y < int(height) {
				offset := (uint32(y)*width + uint32(x)) * 4
				data[offset+0] = c.R
				data[offset+1] = c.G
				data[offset+2] = c.B
				data[offset+3] = c.A
			}
		}
	}

	return &SixelImage{
		Width:       width,
		Height:      height,
		Data:        data,
		Transparent: p.transparent,
	}
}

// hlsToRGB converts HLS color to RGB.
// Sixel uses non-standard HLS where:
// - Hue: 0-360 degrees (blue=0, red=120, green=240)
// - Lightness: 0-100
// - Saturation: 0-100
func hlsToRGB(h, l, s int) color.RGBA {
	if s == 0 {
		// Achromatic (gray)
		v := uint8(l * 255 / 100)
		return color.RGBA{v, v, v, 255}
	}

	// Normalize values
	hNorm := float64(h) / 360.0
	lNorm := float64(l) / 100.0
	sNorm := float64(s) / 100.0

	// Rotate hue for Sixel's non-standard color wheel
	// Sixel: blue=0, red=120, green=240
	// Standard: red=0, green=120, blue=240
	hNorm = hNorm + 2.0/3.0 // Shift by 240 degrees
	if hNorm >= 1.0 {
		hNorm -= 1.0
	}

	var q float64
	if lNorm < 0.5 {
		q = lNorm * (1 + sNorm)
	} else {
		q = lNorm + sNorm - lNorm*sNorm
	}
	p := 2*lNorm - q

	r := hueToRGB(p, q, hNorm+1.0/3.0)
	g := hueToRGB(p, q, hNorm)
	b := hueToRGB(p, q, hNorm-1.0/3.0)

	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}

// hueToRGB is a helper for HLS to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

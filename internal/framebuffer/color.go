package framebuffer

import "image/color"

// RGB is one pixel as it sits in memory at 24-bit depth.
type RGB [3]byte

// FromColor converts any color, ignoring alpha.
func FromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{byte(r >> 8), byte(g >> 8), byte(b >> 8)}
}

// FromXRGB converts a 0x00RRGGBB word.
func FromXRGB(v uint32) RGB {
	return RGB{byte(v >> 16), byte(v >> 8), byte(v)}
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c[0], c[1], c[2], 0xFF}.RGBA()
}

// Colors used by the kernel's screens (Dracula flavored)
var (
	Black        = RGB{0x00, 0x00, 0x00}
	White        = RGB{0xFF, 0xFF, 0xFF}
	MidnightBlue = FromXRGB(0x00191B70)
	BrightGreen  = FromXRGB(0x00B8F171)
	BrightRed    = FromXRGB(0x00FF7882)
	BrightYellow = FromXRGB(0x00FFE580)
	BrightBlue   = FromXRGB(0x0080BAFF)
	Cyan         = FromXRGB(0x0099FFFF)
	LightGray    = FromXRGB(0x00CCCCCC)
)

// Scheme assigns colors to roles.
type Scheme struct {
	Background RGB
	Text       RGB
	Error      RGB
	Warning    RGB
	Info       RGB
}

// DefaultScheme is bright green on midnight blue.
var DefaultScheme = Scheme{
	Background: MidnightBlue,
	Text:       BrightGreen,
	Error:      BrightRed,
	Warning:    BrightYellow,
	Info:       BrightBlue,
}

// ClassicScheme is white on black.
var ClassicScheme = Scheme{
	Background: Black,
	Text:       White,
	Error:      BrightRed,
	Warning:    BrightYellow,
	Info:       Cyan,
}

package core

// Color is a foreground color for a screen cell. The platform layer maps each
// value onto an ANSI 256-color code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightCyan
	ColorBrightMagenta
	ColorBrightWhite
	ColorOrange
	ColorGray
)

package dotplay

import (
	"fmt"
	"io"
	"strconv"
)

const esc = "\033["

// Terminal positions the cursor and toggles its visibility around rendered frames.
type Terminal interface {
	ResetCursor(rows int)
	ShowCursor(show bool)
	MoveTo(row, col int)
	Clear()
	ResetColor()
}

// Xterm writes xterm control sequences to Writer. Write errors are ignored;
// the frame writes that follow will surface them.
type Xterm struct {
	Writer io.Writer
}

// ResetCursor moves the cursor to the beginning of the line and up rows.
func (term *Xterm) ResetCursor(rows int) {
	io.WriteString(term.Writer, fmt.Sprintf(esc+"999D"+esc+"%dA", rows))
}

func (term *Xterm) ShowCursor(show bool) {
	if show {
		io.WriteString(term.Writer, esc+"?12l"+esc+"?25h")
	} else {
		io.WriteString(term.Writer, esc+"?25l")
	}
}

// MoveTo places the cursor at the 1-based row and column.
func (term *Xterm) MoveTo(row, col int) {
	term.Writer.Write(appendCursorTo(nil, row, col))
}

// Clear erases the screen.
func (term *Xterm) Clear() {
	io.WriteString(term.Writer, esc+"2J")
}

// ResetColor restores the default text attributes.
func (term *Xterm) ResetColor() {
	io.WriteString(term.Writer, esc+"0m")
}

func appendCursorTo(dst []byte, row, col int) []byte {
	dst = append(dst, esc...)
	dst = strconv.AppendInt(dst, int64(row), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(col), 10)
	return append(dst, 'H')
}

// appendForeground appends a 24-bit foreground escape with equal channels.
func appendForeground(dst []byte, r, g, b uint8) []byte {
	dst = append(dst, esc+"38;2;"...)
	dst = strconv.AppendUint(dst, uint64(r), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(g), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(b), 10)
	return append(dst, 'm')
}

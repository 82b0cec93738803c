package dotplay

import (
	"bytes"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type osdLine struct {
	Frame        int
	Item         Item
	Elapsed      time.Duration
	Buffered     int
	Render       time.Duration
	ColorChanges int
}

// osd draws a one-line status display on the top row of the screen.
type osd struct {
	w   io.Writer
	p   *message.Printer
	buf bytes.Buffer
}

func newOSD(w io.Writer) *osd {
	return &osd{
		w: w,
		p: message.NewPrinter(language.English),
	}
}

// Draw writes the status line for one frame in a single Write.
func (o *osd) Draw(l osdLine) error {
	o.buf.Reset()
	o.buf.Write(appendCursorTo(nil, 1, 1))
	o.buf.Write(appendForeground(nil, 20, 200, 255))

	var rate float64
	if l.Item.TimeBase > 0 {
		rate = 1 / l.Item.TimeBase
	}
	o.p.Fprintf(&o.buf, "%-32s", o.p.Sprintf("frame %d pts %d %.3fs", l.Frame, l.Item.PTS, l.Item.Timestamp().Seconds()))
	o.p.Fprintf(&o.buf, "%-24s", o.p.Sprintf("real %.3fs tb 1/%.2f", l.Elapsed.Seconds(), rate))
	o.p.Fprintf(&o.buf, "%-24s", o.p.Sprintf("buf %d slot %d", l.Buffered, l.Item.Slot))
	o.p.Fprintf(&o.buf, "%-32s", o.p.Sprintf("frame %dµs colors %d", l.Render.Microseconds(), l.ColorChanges))

	o.buf.Write(appendForeground(nil, 255, 255, 255))
	_, err := o.w.Write(o.buf.Bytes())
	return err
}

package scan

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"
)

// maxLineBytes bounds a single decoded payload read from a line source.
const maxLineBytes = 4096

// Decode is one raw decoder output.
type Decode struct {
	Text string
	At   time.Time
}

// ReadLines emits a Decode for every non-empty line of r. Keyboard-wedge
// scanners type the symbol followed by Enter, so each line is one decode. The
// channel is closed on EOF, on a read error, or when ctx is done.
func ReadLines(ctx context.Context, r io.Reader, now func() time.Time) <-chan Decode {
	if now == nil {
		now = time.Now
	}
	out := make(chan Decode)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 256), maxLineBytes)
		for sc.Scan() {
			text := strings.TrimSpace(sc.Text())
			if text == "" {
				continue
			}
			select {
			case out <- Decode{Text: text, At: now()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Pump hands events from in to handle one at a time on the calling goroutine.
// It returns nil when in is closed and ctx.Err() when ctx is done.
func Pump(ctx context.Context, in <-chan Decode, handle func(context.Context, Decode)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-in:
			if !ok {
				return nil
			}
			handle(ctx, d)
		}
	}
}

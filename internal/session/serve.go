package session

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauern/wsprofile/internal/logging"
)

// maxLineSize bounds a single request; profiles with scaffold files can be large.
const maxLineSize = 4 << 20

// Serve reads JSON requests from r, one per line, and writes the resulting
// events to w, one per line. Requests are handled strictly in order. A line
// that does not decode produces an error notification and the loop goes on.
// Serve returns nil at EOF and ctx.Err() when the context ends.
func (c *Controller) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	log := logging.WithContext(ctx).With(slog.String("session", c.id))
	log.Info("session started")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var events []Event
		req, err := Decode(line)
		if err != nil {
			log.Warn("rejected request", logging.Err(err))
			events = []Event{errorf("%v", err)}
		} else {
			log.Debug("handling request", slog.String("type", fmt.Sprintf("%T", req)))
			events = c.Handle(ctx, req)
		}

		if err := writeEvents(out, events); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	log.Info("session ended")
	return nil
}

func writeEvents(out *bufio.Writer, events []Event) error {
	for _, ev := range events {
		data, err := Encode(ev)
		if err != nil {
			return err
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

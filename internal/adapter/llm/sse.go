package llm

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

// maxFrameLine bounds one SSE line. Provider frames are single-line JSON and
// can exceed bufio's 64 KiB default.
const maxFrameLine = 4 << 20

// sseEvent is one dispatched server-sent event.
type sseEvent struct {
	Event string
	Data  string
}

// readEvents splits r into SSE events. Events are dispatched on a blank
// line; multiple data lines are joined with "\n"; comments are ignored.
// A read failure is yielded once and ends the sequence. A trailing event
// without its blank line is dispatched only when the body ended cleanly.
func readEvents(r io.Reader) iter.Seq2[sseEvent, error] {
	return func(yield func(sseEvent, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxFrameLine)

		var (
			event   sseEvent
			data    []string
			pending bool
		)
		dispatch := func() bool {
			if !pending {
				return true
			}
			event.Data = strings.Join(data, "\n")
			ok := yield(event, nil)
			event, data, pending = sseEvent{}, data[:0], false
			return ok
		}

		for scanner.Scan() {
			line := scanner.Text()

			// Empty line marks end of event
			if line == "" {
				if !dispatch() {
					return
				}
				continue
			}
			if strings.HasPrefix(line, ":") {
				continue
			}

			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				event.Event = value
				pending = true
			case "data":
				data = append(data, value)
				pending = true
			}
		}

		if err := scanner.Err(); err != nil {
			yield(sseEvent{}, err)
			return
		}
		dispatch()
	}
}

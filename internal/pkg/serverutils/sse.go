package serverutils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEEvent is one decoded server-sent event. Event defaults to "message".
type SSEEvent struct {
	Event string
	Data  string
}

type flusher interface {
	Flush() error
}

func SetSSEHeaders(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")
}

// WriteSSE writes payload as one JSON data frame and flushes it. An empty
// event name produces a default "message" event.
func WriteSSE(w io.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// WriteSSEComment writes a keep-alive comment line.
func WriteSSEComment(w io.Writer, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// ScanSSE reads events from r until EOF, ctx ends or fn fails.
func ScanSSE(ctx context.Context, r io.Reader, fn func(SSEEvent) error) error {
	scanner := bufio.NewScanner(r)
	eventType := "message"
	var eventData bytes.Buffer

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if line == "" {
			if eventData.Len() == 0 {
				continue
			}
			data := strings.TrimSuffix(eventData.String(), "\n")
			if err := fn(SSEEvent{Event: eventType, Data: data}); err != nil {
				return err
			}
			eventType = "message"
			eventData.Reset()
			continue
		}

		switch {
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			eventData.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			eventData.WriteByte('\n')
		case strings.HasPrefix(line, ":"):
			// comment
		}
	}
	return scanner.Err()
}

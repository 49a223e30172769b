package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/pkg/serverutils"
)

const LoadingText = "Loading..."

// Assembler rebuilds the coach text on the client side by appending
// characters in arrival order.
type Assembler struct {
	mu   sync.RWMutex
	text strings.Builder
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

func (a *Assembler) Append(char string) {
	a.mu.Lock()
	a.text.WriteString(char)
	a.mu.Unlock()
}

// Reset clears the text for a new session.
func (a *Assembler) Reset() {
	a.mu.Lock()
	a.text.Reset()
	a.mu.Unlock()
}

func (a *Assembler) Text() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text.String()
}

// Display is what the chat bubble shows.
func (a *Assembler) Display() string {
	if text := a.Text(); text != "" {
		return text
	}
	return LoadingText
}

// Consume appends every "message" frame read from r until the stream closes.
// Frames that do not decode are skipped.
func (a *Assembler) Consume(ctx context.Context, r io.Reader) error {
	return serverutils.ScanSSE(ctx, r, func(ev serverutils.SSEEvent) error {
		if ev.Event != "message" {
			return nil
		}
		var chunk dto.CoachChunk
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			return nil
		}
		a.Append(chunk.Char)
		return nil
	})
}

// Listen opens a new session against url and consumes it.
func (a *Assembler) Listen(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coach stream: unexpected status %d", resp.StatusCode)
	}

	a.Reset()
	return a.Consume(ctx, resp.Body)
}

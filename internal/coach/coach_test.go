package coach

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func TestProducer_CharsInOrder(t *testing.T) {
	p := NewProducer()
	assert.Equal(t, strings.Join(DefaultMessages, ""), strings.Join(slices.Collect(p.Chars()), ""))

	var first []string
	for c := range NewProducer(WithMessages("Hé", "y")).Chars() {
		first = append(first, c)
	}
	assert.Equal(t, []string{"H", "é", "y"}, first)
}

func TestProducer_PacesEveryChar(t *testing.T) {
	rec := &recordedSleeps{}
	p := NewProducer(WithMessages("Hi!"), WithSleep(rec.sleep))

	var got []string
	require.NoError(t, p.Stream(context.Background(), func(c string) error {
		got = append(got, c)
		return nil
	}))

	assert.Equal(t, []string{"H", "i", "!"}, got)
	assert.Equal(t, []time.Duration{DefaultInitialDelay, DefaultCharDelay, DefaultCharDelay, DefaultCharDelay}, rec.delays)
}

func TestProducer_NotRestartable(t *testing.T) {
	p := NewProducer(WithMessages("Hi!"), WithDelays(0, 0))
	require.NoError(t, p.Stream(context.Background(), func(string) error { return nil }))
	assert.ErrorIs(t, p.Stream(context.Background(), func(string) error { return nil }), ErrStreamConsumed)
	assert.ErrorIs(t, p.WriteSSE(context.Background(), io.Discard), ErrStreamConsumed)
}

func TestProducer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewProducer(WithMessages("Hello"), WithDelays(0, time.Millisecond))
	var got []string
	err := p.Stream(ctx, func(c string) error {
		got = append(got, c)
		if len(got) == 2 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"H", "e"}, got)
}

func TestProducer_StopsOnEmitError(t *testing.T) {
	broken := errors.New("client gone")
	p := NewProducer(WithMessages("Hello"), WithDelays(0, 0))
	calls := 0
	err := p.Stream(context.Background(), func(string) error {
		calls++
		return broken
	})
	assert.ErrorIs(t, err, broken)
	assert.Equal(t, 1, calls)
}

func TestWriteSSE_Frames(t *testing.T) {
	var buf bytes.Buffer
	p := NewProducer(WithMessages("Hi"), WithDelays(0, 0))
	require.NoError(t, p.WriteSSE(context.Background(), &buf))
	assert.Equal(t, "data: {\"char\":\"H\"}\n\ndata: {\"char\":\"i\"}\n\n", buf.String())
}

func TestAssembler_RoundTrip(t *testing.T) {
	pr, pw := io.Pipe()
	p := NewProducer(WithMessages("H", "i", "!"), WithDelays(time.Millisecond, time.Millisecond))

	go func() {
		pw.CloseWithError(p.WriteSSE(context.Background(), pw))
	}()

	a := NewAssembler()
	assert.Equal(t, LoadingText, a.Display())
	require.NoError(t, a.Consume(context.Background(), pr))
	assert.Equal(t, "Hi!", a.Text())
	assert.Equal(t, "Hi!", a.Display())
}

func TestAssembler_SkipsForeignFrames(t *testing.T) {
	stream := "event: ping\ndata: {}\n\n" +
		"data: not json\n\n" +
		": keep-alive\n\n" +
		"data: {\"char\":\"o\"}\n\n" +
		"data: {\"char\":\"k\"}\n\n"
	a := NewAssembler()
	require.NoError(t, a.Consume(context.Background(), strings.NewReader(stream)))
	assert.Equal(t, "ok", a.Text())
}

func TestAssembler_ListenResetsPerSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		p := NewProducer(WithMessages("Hey"), WithDelays(0, 0))
		_ = p.Stream(r.Context(), func(c string) error {
			_, err := io.WriteString(w, "data: {\"char\":\""+c+"\"}\n\n")
			w.(http.Flusher).Flush()
			return err
		})
	}))
	defer srv.Close()

	transport := &http.Transport{DisableKeepAlives: true}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport}

	a := NewAssembler()
	a.Append("stale")
	require.NoError(t, a.Listen(context.Background(), client, srv.URL))
	assert.Equal(t, "Hey", a.Text())

	require.NoError(t, a.Listen(context.Background(), client, srv.URL))
	assert.Equal(t, "Hey", a.Text(), "a new session starts from scratch")
}

package coach

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync/atomic"
	"time"

	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/pkg/serverutils"
)

var ErrStreamConsumed = errors.New("coach stream already consumed")

var DefaultMessages = []string{
	"Hello! ",
	"I am Coach Kody. ",
	"How can I help you today?",
}

const (
	DefaultInitialDelay = time.Second
	DefaultCharDelay    = 100 * time.Millisecond
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Producer emits the coach's messages one character at a time. A Producer
// streams once; missed characters are gone.
type Producer struct {
	messages     []string
	initialDelay time.Duration
	charDelay    time.Duration
	sleep        SleepFunc
	consumed     atomic.Bool
}

type Option func(*Producer)

func WithMessages(messages ...string) Option {
	return func(p *Producer) { p.messages = messages }
}

func WithDelays(initial, perChar time.Duration) Option {
	return func(p *Producer) {
		p.initialDelay = initial
		p.charDelay = perChar
	}
}

func WithSleep(sleep SleepFunc) Option {
	return func(p *Producer) { p.sleep = sleep }
}

func NewProducer(opts ...Option) *Producer {
	p := &Producer{
		messages:     DefaultMessages,
		initialDelay: DefaultInitialDelay,
		charDelay:    DefaultCharDelay,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Chars yields every character of every message in order, without delays.
func (p *Producer) Chars() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, message := range p.messages {
			for _, r := range message {
				if !yield(string(r)) {
					return
				}
			}
		}
	}
}

// Stream paces Chars through emit. It fails with ErrStreamConsumed when
// called a second time and stops early when ctx ends or emit fails.
func (p *Producer) Stream(ctx context.Context, emit func(string) error) error {
	if p.consumed.Swap(true) {
		return ErrStreamConsumed
	}
	if err := p.sleep(ctx, p.initialDelay); err != nil {
		return err
	}
	for char := range p.Chars() {
		if err := p.sleep(ctx, p.charDelay); err != nil {
			return err
		}
		if err := emit(char); err != nil {
			return err
		}
	}
	return nil
}

// WriteSSE streams the characters as data frames, flushing after each.
func (p *Producer) WriteSSE(ctx context.Context, w io.Writer) error {
	return p.Stream(ctx, func(char string) error {
		return serverutils.WriteSSE(w, "", dto.CoachChunk{Char: char})
	})
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"workshop-app-be/internal/coach"
	"workshop-app-be/internal/dto"
	"workshop-app-be/pkg/events"
	pktNats "workshop-app-be/pkg/nats"

	"github.com/fatih/color"
)

// Simulation drives a running server: a handful of fake learners walk
// through the workshop, then the coach stream is played back.
func main() {
	baseURL := flag.String("url", "http://localhost:5639", "server base url")
	natsURL := flag.String("nats", os.Getenv("NATS_URL"), "publish over NATS instead of HTTP")
	learners := flag.Int("learners", 4, "number of simulated learners")
	rounds := flag.Int("rounds", 5, "steps each learner takes")
	interval := flag.Duration("interval", 2*time.Second, "pause between rounds")
	workshop := flag.String("workshop", "Web Forms", "workshop title sent with every event")
	skipCoach := flag.Bool("skip-coach", false, "do not play the coach stream")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	color.Cyan("🚀 Starting presence simulation (%d learners, %d rounds)\n", *learners, *rounds)

	send, closeSender := newSender(*baseURL, *natsURL)
	defer closeSender()

	for round := 0; round < *rounds; round++ {
		color.Yellow("\n[ROUND %d]", round+1)
		for i := 0; i < *learners; i++ {
			msg := learnerEvent(i, round, *workshop)
			payload, _ := json.Marshal(msg)
			if err := send(ctx, payload); err != nil {
				color.Red("learner %s: %v", msg.User.ID, err)
				continue
			}
			color.Green("learner %s -> exercise %d step %d",
				msg.User.ID, msg.Location.Exercise.ExerciseNumber, msg.Location.Exercise.StepNumber)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(*interval):
		}
	}

	if *skipCoach {
		return
	}

	color.Yellow("\n[COACH] Listening on %s/coach-kody", *baseURL)
	a := coach.NewAssembler()
	if err := a.Listen(ctx, &http.Client{}, *baseURL+"/coach-kody"); err != nil {
		color.Red("Coach stream failed: %v", err)
		os.Exit(1)
	}
	fmt.Println(a.Display())
}

// learnerEvent moves learner i one step per round, starting at a
// different exercise so the face piles differ.
func learnerEvent(i, round int, workshop string) dto.PresenceEventMessage {
	step := round + 1
	kind := "problem"
	if round%2 == 1 {
		kind = "solution"
	}
	return dto.PresenceEventMessage{
		Type: events.TypePresenceUpdate,
		User: &dto.PresenceUser{
			ID:        fmt.Sprintf("sim-%d", i),
			Name:      fmt.Sprintf("Simulated Learner %d", i+1),
			AvatarURL: fmt.Sprintf("https://i.pravatar.cc/64?u=sim-%d", i),
		},
		Location: &dto.PresenceLocation{
			WorkshopTitle: workshop,
			Origin:        "http://localhost:5639",
			Exercise: &dto.PresenceExercise{
				ExerciseNumber: i%3 + 1,
				StepNumber:     step,
				Type:           kind,
			},
		},
		Timestamp: time.Now().UnixMilli(),
		Seq:       uint64(round + 1),
	}
}

type sendFunc func(ctx context.Context, payload []byte) error

func newSender(baseURL, natsURL string) (sendFunc, func()) {
	if natsURL != "" {
		pub, err := pktNats.NewPublisher(natsURL)
		if err != nil {
			color.Red("Failed to connect to NATS: %v", err)
			os.Exit(1)
		}
		color.Cyan("Publishing over NATS (%s)", natsURL)
		return func(ctx context.Context, payload []byte) error {
			return pub.Publish(ctx, events.NewPresenceEvent(events.TypePresenceUpdate, payload, time.Now()))
		}, pub.Close
	}

	client := &http.Client{Timeout: 10 * time.Second}
	color.Cyan("Publishing over HTTP (%s)", baseURL)
	return func(ctx context.Context, payload []byte) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/presence/events", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		return nil
	}, func() {}
}

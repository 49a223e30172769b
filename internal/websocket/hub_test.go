package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"workshop-app-be/internal/model"
	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/presence"
	"workshop-app-be/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingested struct {
	source  service.Source
	payload string
}

type fakeIngestor struct {
	mu  sync.Mutex
	got []ingested
}

func (f *fakeIngestor) Ingest(_ context.Context, source service.Source, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, ingested{source: source, payload: string(payload)})
	return nil
}

func (f *fakeIngestor) all() []ingested {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ingested(nil), f.got...)
}

func newTestHub(t *testing.T) (*Hub, *presence.Feed, *fakeIngestor) {
	ctx, cancel := context.WithCancel(context.Background())
	feed := presence.NewFeed(time.Minute, logger.NewNop(), nil)
	ing := &fakeIngestor{}
	hub := NewHub(nil, "presence_cluster", "instance-a", ing, logger.NewNop(), nil)

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx, feed)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub, feed, ing
}

func newClient(hub *Hub, id string, user *model.CurrentUser) *Client {
	return &Client{Hub: hub, ID: id, User: user, Send: make(chan []byte, 16)}
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send:
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func learner(id string, seq uint64) presence.Event {
	return presence.Event{
		Type:      presence.EventUpdate,
		Learner:   model.Learner{ID: id, Name: id},
		Timestamp: time.UnixMilli(1700000000000),
		Seq:       seq,
	}
}

func TestHub_SeedsAndBroadcasts(t *testing.T) {
	hub, feed, _ := newTestHub(t)
	feed.Publish(learner("early", 1))

	client := newClient(hub, "c1", nil)
	require.True(t, hub.Register(client))

	seeded := receive(t, client)
	assert.Equal(t, "presence", seeded["type"])
	assert.Equal(t, "early", seeded["data"].(map[string]interface{})["user"].(map[string]interface{})["id"])

	feed.Publish(learner("late", 1))
	frame := receive(t, client)
	assert.Equal(t, "late", frame["data"].(map[string]interface{})["user"].(map[string]interface{})["id"])
	assert.Equal(t, 1, hub.Clients())
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub, _, _ := newTestHub(t)
	client := newClient(hub, "c1", nil)
	require.True(t, hub.Register(client))

	hub.Unregister(client)
	hub.Unregister(client)

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_StoppedHubRefusesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, "presence_cluster", "instance-a", &fakeIngestor{}, logger.NewNop(), nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx, presence.NewFeed(time.Minute, logger.NewNop(), nil))
		close(done)
	}()

	client := newClient(hub, "c1", nil)
	require.True(t, hub.Register(client))
	cancel()
	<-done

	_, open := <-client.Send
	assert.False(t, open, "shutdown closes every socket")
	assert.False(t, hub.Register(newClient(hub, "c2", nil)))
	hub.Unregister(client)
}

func TestHub_InboundUsesTokenIdentity(t *testing.T) {
	hub, _, ing := newTestHub(t)

	user := &model.CurrentUser{ID: "ada", Name: "Ada", AvatarURL: "/ada.png"}
	hub.handleInbound(context.Background(), newClient(hub, "c1", user), []byte(`{"user":{"id":"mallory"},"seq":4}`))
	hub.handleInbound(context.Background(), newClient(hub, "c2", nil), []byte(`{"user":{"id":"ada","name":"Guest"}}`))
	hub.handleInbound(context.Background(), newClient(hub, "c3", user), []byte(`{{`))

	got := ing.all()
	require.Len(t, got, 2)
	assert.Equal(t, service.SourceSocket, got[0].source)
	assert.JSONEq(t, `{"user":{"id":"ada","name":"Ada","avatarUrl":"/ada.png"},"seq":4}`, got[0].payload)
	assert.JSONEq(t, `{"user":{"id":"anon:c2","name":"Guest"}}`, got[1].payload)
}

func TestHub_AnonymousSocketsCannotShareAnIdentity(t *testing.T) {
	hub, _, ing := newTestHub(t)

	hub.handleInbound(context.Background(), newClient(hub, "c1", nil), []byte(`{"user":{"id":"ada"},"seq":1}`))
	hub.handleInbound(context.Background(), newClient(hub, "c2", nil), []byte(`{"seq":2}`))
	hub.handleInbound(context.Background(), newClient(hub, "c1", &model.CurrentUser{}), []byte(`{"user":{"id":"ada"},"seq":3}`))

	got := ing.all()
	require.Len(t, got, 3)
	assert.JSONEq(t, `{"user":{"id":"anon:c1"},"seq":1}`, got[0].payload)
	assert.JSONEq(t, `{"user":{"id":"anon:c2"},"seq":2}`, got[1].payload)
	assert.JSONEq(t, `{"user":{"id":"anon:c1"},"seq":3}`, got[2].payload, "a token without a subject is anonymous")
}

func TestHub_SeedArrivesBeforeLiveEvents(t *testing.T) {
	hub, feed, _ := newTestHub(t)
	for i := 0; i < 8; i++ {
		feed.Publish(learner(fmt.Sprintf("seeded-%d", i), 1))
	}

	client := &Client{Hub: hub, ID: "c1", Send: make(chan []byte, 256)}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for seq := uint64(2); ; seq++ {
			select {
			case <-stop:
				return
			default:
			}
			feed.Publish(learner("seeded-0", seq))
			if seq >= 100 {
				return
			}
		}
	}()
	require.True(t, hub.Register(client))
	close(stop)
	wg.Wait()

	var last uint64
	for {
		select {
		case data := <-client.Send:
			var frame struct {
				Data struct {
					User struct {
						ID string `json:"id"`
					} `json:"user"`
					Seq uint64 `json:"seq"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(data, &frame))
			if frame.Data.User.ID != "seeded-0" {
				continue
			}
			assert.GreaterOrEqual(t, frame.Data.Seq, last, "frames for one learner never go backwards")
			last = frame.Data.Seq
		default:
			assert.NotZero(t, last)
			return
		}
	}
}

func TestHub_ClusterMessages(t *testing.T) {
	hub, _, ing := newTestHub(t)

	hub.handleClusterMessage(context.Background(), `{"origin":"instance-a","message":{"user":{"id":"self"}}}`)
	hub.handleClusterMessage(context.Background(), `{"origin":"instance-b","message":{"user":{"id":"peer"}}}`)
	hub.handleClusterMessage(context.Background(), `garbage`)

	got := ing.all()
	require.Len(t, got, 1)
	assert.Equal(t, service.SourceCluster, got[0].source)
	assert.JSONEq(t, `{"user":{"id":"peer"}}`, got[0].payload)
	assert.NoError(t, hub.Relay(context.Background(), []byte(`{}`)), "no redis means nothing to relay")
}

package service

import (
	"context"

	"workshop-app-be/internal/model"
	"workshop-app-be/internal/presence"

	"github.com/google/uuid"
)

type IPresenceService interface {
	// Watch opens a live aggregator for one viewer. stop must be called when
	// the viewer goes away.
	Watch(viewer *model.Location) (agg *presence.Aggregator, stop func())
	Snapshot(viewer *model.Location, limit int) presence.View
	Ingest(ctx context.Context, source Source, payload []byte) error
	Labels() presence.Labels
}

type presenceService struct {
	feed      *presence.Feed
	policy    presence.ScorePolicy
	promo     *presence.PromoEntry
	labels    presence.Labels
	publisher IPublisherService
}

func NewPresenceService(
	feed *presence.Feed,
	policy presence.ScorePolicy,
	promo *presence.PromoEntry,
	labels presence.Labels,
	publisher IPublisherService,
) IPresenceService {
	return &presenceService{
		feed:      feed,
		policy:    policy,
		promo:     promo,
		labels:    labels,
		publisher: publisher,
	}
}

func (s *presenceService) newAggregator(viewer *model.Location) *presence.Aggregator {
	return presence.NewAggregator(viewer, s.policy, presence.Options{
		Promo:        s.promo,
		TombstoneTTL: s.feed.StaleAfter(),
	})
}

func (s *presenceService) Watch(viewer *model.Location) (*presence.Aggregator, func()) {
	agg := s.newAggregator(viewer)
	unsubscribe := s.feed.Subscribe(uuid.NewString(), agg)
	return agg, func() {
		unsubscribe()
		agg.Close()
	}
}

// Snapshot scores the feed's live learners once, without subscribing.
func (s *presenceService) Snapshot(viewer *model.Location, limit int) presence.View {
	agg := s.newAggregator(viewer)
	defer agg.Close()
	for _, ev := range s.feed.Live() {
		agg.Update(ev)
	}
	return agg.Snapshot(limit)
}

func (s *presenceService) Ingest(ctx context.Context, source Source, payload []byte) error {
	return s.publisher.Publish(ctx, source, payload)
}

func (s *presenceService) Labels() presence.Labels {
	return s.labels
}

// ViewerLocation is where the requesting learner is, as seen by the score
// policy. A selection without an exercise yields a location with no
// coordinates.
func ViewerLocation(workshopTitle string, exerciseNumber, stepNumber int, appType string) *model.Location {
	loc := &model.Location{WorkshopTitle: workshopTitle}
	if exerciseNumber > 0 {
		loc.Exercise = &model.ExerciseLocation{
			ExerciseNumber: exerciseNumber,
			StepNumber:     stepNumber,
			Type:           appType,
		}
	}
	return loc
}

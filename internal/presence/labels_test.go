package presence

import (
	"testing"

	"workshop-app-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverflowLabel(t *testing.T) {
	l := DefaultLabels()
	tests := []struct {
		n        int
		expanded bool
		label    string
		badge    string
	}{
		{1, true, "1 more Epic Web Dev working now", "+1"},
		{1, false, "1 Epic Web Dev working now", "1"},
		{18, true, "18 more Epic Web Devs working now", "+18"},
		{18, false, "18 Epic Web Devs working now", "18"},
		{0, false, "0 Epic Web Devs working now", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, l.OverflowLabel(tt.n, tt.expanded))
		assert.Equal(t, tt.badge, OverflowBadge(tt.n, tt.expanded))
	}
}

func TestLocationLabelFor(t *testing.T) {
	assert.Nil(t, LocationLabelFor(nil))
	assert.Nil(t, LocationLabelFor(&model.Location{}))

	label := LocationLabelFor(at(1, 2))
	require.NotNil(t, label)
	assert.Equal(t, "Web Forms", label.Line1)
	assert.Equal(t, "01/02 - problem", label.Line2)

	intro := LocationLabelFor(&model.Location{WorkshopTitle: "Web Forms", Exercise: &model.ExerciseLocation{ExerciseNumber: 4}})
	assert.Equal(t, "04", intro.Line2)

	titleOnly := LocationLabelFor(&model.Location{WorkshopTitle: "Web Forms"})
	assert.Equal(t, "", titleOnly.Line2)
}

func TestTooltip(t *testing.T) {
	l := DefaultLabels()

	r := Record{Learner: model.Learner{ID: "a", Name: "Kody"}, Location: at(1, 1), Score: 1}
	assert.Equal(t, "Kody is working with you on", l.Tooltip(r, "me"))
	assert.Equal(t, "Kody is working on", l.Tooltip(r, "a"), "never 'with you' to yourself")

	r.Location.Origin = "https://www.epicweb.dev/workshops/web-forms"
	r.Score = 0.4
	assert.Equal(t, "Kody is learning on", l.Tooltip(r, ""))

	anon := Record{Learner: model.Learner{ID: "b"}}
	assert.Equal(t, "An EPIC Web Dev", l.Tooltip(anon, ""))
}

func TestBuildFacePile(t *testing.T) {
	l := DefaultLabels()
	assert.Nil(t, l.BuildFacePile(View{}, true, ""))

	agg := NewAggregator(at(1, 1), DefaultDistancePolicy(), Options{Promo: DefaultPromo()})
	agg.Update(update("A", 1, at(1, 1)))

	pile := l.BuildFacePile(agg.Snapshot(17), true, "")
	require.NotNil(t, pile)
	require.Len(t, pile.Faces, 2)
	assert.Equal(t, "Learner A is working with you on", pile.Faces[0].Tooltip)
	assert.True(t, pile.Faces[0].Classes.Pulse)
	assert.Empty(t, pile.Faces[1].Tooltip)
	assert.Empty(t, pile.OverflowLabel)

	collapsed := l.BuildFacePile(agg.Snapshot(0), false, "")
	require.NotNil(t, collapsed)
	assert.Empty(t, collapsed.Faces)
	assert.Equal(t, "1 Epic Web Dev working now", collapsed.OverflowLabel)
	assert.Equal(t, "1", collapsed.OverflowBadge)
}

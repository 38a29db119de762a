package snapshot

import (
	"encoding/json"
	"errors"
	"testing"

	"pi-builder/internal/engine"
	"pi-builder/internal/formatter"
	"pi-builder/internal/siteconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMount(t *testing.T) {
	assert.NoError(t, New().Mount("anything"))

	v := New(WithContainers("pi-app"))
	assert.NoError(t, v.Mount("pi-app"))
	assert.Error(t, v.Mount("other"))
	assert.Equal(t, "pi-app", v.Snapshot().Container)
}

func TestGlobeInitResetsMarkers(t *testing.T) {
	v := New()
	require.NoError(t, v.Init(engine.GlobeOptions{CameraZ: 2.8}))
	v.AddMarkers([]engine.Marker{{ID: "a"}, {ID: "b"}})
	require.NoError(t, v.Init(engine.GlobeOptions{CameraZ: 2.8}))
	v.AddMarkers([]engine.Marker{{ID: "c"}})

	g := v.Snapshot().Globe
	assert.Equal(t, 2, g.Inits)
	assert.Len(t, g.Markers, 1)

	failing := New(WithGlobeError(errors.New("no webgl")))
	assert.Error(t, failing.Init(engine.GlobeOptions{}))
	assert.False(t, failing.Snapshot().Globe.Ready)
}

func TestCardListAndCallbacks(t *testing.T) {
	v := New()
	var selected []string
	v.RenderCardList("list", []formatter.Card{{ID: "a"}, {ID: "b"}}, engine.CardListOptions{
		Filter:   "all",
		OnSelect: func(id string) { selected = append(selected, id) },
	})

	s := v.Snapshot()
	assert.Equal(t, "2 locations", s.CardCount)
	assert.Equal(t, "list", s.CardListID)

	assert.True(t, v.ClickCard("b"))
	assert.False(t, v.ClickCard("zz"))
	assert.Equal(t, []string{"b"}, selected)
}

func TestMarkerCallbacks(t *testing.T) {
	v := New()
	assert.False(t, v.ClickMarker("a"), "no handler yet")

	v.AddMarkers([]engine.Marker{{ID: "a"}})
	var clicked string
	var hovered []string
	v.OnMarkerClick(func(m engine.Marker) { clicked = m.ID })
	v.OnMarkerHover(func(m *engine.Marker) {
		if m == nil {
			hovered = append(hovered, "<none>")
			return
		}
		hovered = append(hovered, m.ID)
	})

	assert.True(t, v.ClickMarker("a"))
	assert.False(t, v.ClickMarker("b"))
	assert.True(t, v.HoverMarker("a"))
	assert.True(t, v.HoverMarker(""))
	assert.False(t, v.HoverMarker("b"))

	assert.Equal(t, "a", clicked)
	assert.Equal(t, []string{"a", "<none>"}, hovered)
}

func TestSnapshotIsACopy(t *testing.T) {
	v := New()
	v.RenderFilters([]string{"all", "x"})
	v.ShowTooltip(formatter.Tooltip{Name: "one"})

	s := v.Snapshot()
	s.Filters[0] = "changed"
	s.Tooltip.Name = "changed"

	assert.Equal(t, "all", v.Snapshot().Filters[0])
	assert.Equal(t, "one", v.Snapshot().Tooltip.Name)
}

func TestDetailLifecycle(t *testing.T) {
	v := New()
	v.SelectCard("a")
	v.ShowDetailPanel(formatter.Detail{Record: siteconfig.Location{"id": "a", "name": "A"}, Icon: "x"})
	require.NotNil(t, v.Snapshot().Detail)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	detail := decoded["detail"].(map[string]interface{})
	assert.Equal(t, "A", detail["name"])
	assert.Equal(t, []interface{}{}, detail["badges"])

	v.HideDetailPanel()
	assert.Nil(t, v.Snapshot().Detail)
	assert.Empty(t, v.Snapshot().SelectedCard)
}

package atlas_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helfer/atlas"
	"github.com/helfer/atlas/internal/eventbus"
	"github.com/helfer/atlas/internal/events"
	"github.com/helfer/atlas/internal/language"
	"github.com/helfer/atlas/internal/readengine"
)

func mustParse(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(q)
	require.NoError(t, err)
	return doc
}

func TestVariablesVsInline_DistinctStoreEntries(t *testing.T) {
	store := atlas.NewStore()
	defer store.Close()

	q := mustParse(t, `query($key: String) { someRandomKey(key: $key) { id } }`)

	changed, err := store.Write(q, map[string]any{"someRandomKey": map[string]any{"__id": "111", "id": 111}},
		atlas.Context{Variables: map[string]any{"key": "X"}})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = store.Write(q, map[string]any{"someRandomKey": map[string]any{"__id": "222", "id": 222}},
		atlas.Context{Variables: map[string]any{"key": "Y"}})
	require.NoError(t, err)
	require.True(t, changed)

	rq := mustParse(t, `query($key: String) { someRandomKey(key: $key) { id } }`)

	viewX, ok, err := store.Read(rq, atlas.Context{Variables: map[string]any{"key": "X"}})
	require.NoError(t, err)
	require.True(t, ok)
	mapX, err := viewX.ToMap()
	require.NoError(t, err)
	require.Equal(t, float64(111), mapX["someRandomKey"].(map[string]any)["id"])

	viewY, ok, err := store.Read(rq, atlas.Context{Variables: map[string]any{"key": "Y"}})
	require.NoError(t, err)
	require.True(t, ok)
	mapY, err := viewY.ToMap()
	require.NoError(t, err)
	require.Equal(t, float64(222), mapY["someRandomKey"].(map[string]any)["id"])
}

func TestOptimisticIsolation(t *testing.T) {
	store := atlas.NewStore()
	defer store.Close()

	q := mustParse(t, `{ glass { phrase who } }`)

	_, err := store.Write(q, map[string]any{"glass": map[string]any{"phrase": "Half Empty", "who": "Pessimist"}}, atlas.Context{})
	require.NoError(t, err)

	_, err = store.Write(q, map[string]any{"glass": map[string]any{"phrase": "Half full", "who": "Optimist"}}, atlas.Context{IsOptimistic: true})
	require.NoError(t, err)

	baseView, ok, err := store.Read(q, atlas.Context{})
	require.NoError(t, err)
	require.True(t, ok)
	baseMap, err := baseView.ToMap()
	require.NoError(t, err)
	require.Equal(t, "Half Empty", baseMap["glass"].(map[string]any)["phrase"])

	optView, ok, err := store.Read(q, atlas.Context{IsOptimistic: true})
	require.NoError(t, err)
	require.True(t, ok)
	optMap, err := optView.ToMap()
	require.NoError(t, err)
	require.Equal(t, "Half full", optMap["glass"].(map[string]any)["phrase"])
}

func TestWrite_SameDataTwice_ReturnsFalseAndSkipsNotification(t *testing.T) {
	store := atlas.NewStore()
	defer store.Close()

	q := mustParse(t, `{ glass { phrase } }`)
	data := map[string]any{"glass": map[string]any{"phrase": "Half Empty"}}

	changed, err := store.Write(q, data, atlas.Context{})
	require.NoError(t, err)
	require.True(t, changed)

	obs, err := store.Observe(q, atlas.Context{})
	require.NoError(t, err)

	notifications := make(chan *readengine.ObjectView, 4)
	unsubscribe := obs.Subscribe(atlas.Subscriber{Next: func(v *readengine.ObjectView) { notifications <- v }})
	defer unsubscribe()

	select {
	case <-notifications:
	case <-time.After(time.Second):
		t.Fatal("expected the deferred first read to be delivered")
	}

	changed, err = store.Write(q, data, atlas.Context{})
	require.NoError(t, err)
	require.False(t, changed, "identical data is a no-op")

	select {
	case <-notifications:
		t.Fatal("a no-op write must not notify subscribers")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestObserve_NotifiesOnChange_InOrder(t *testing.T) {
	store := atlas.NewStore()
	defer store.Close()

	q := mustParse(t, `{ glass { phrase } }`)
	_, err := store.Write(q, map[string]any{"glass": map[string]any{"phrase": "v0"}}, atlas.Context{})
	require.NoError(t, err)

	obs, err := store.Observe(q, atlas.Context{})
	require.NoError(t, err)

	notifications := make(chan *readengine.ObjectView, 8)
	unsubscribe := obs.Subscribe(atlas.Subscriber{Next: func(v *readengine.ObjectView) { notifications <- v }})
	defer unsubscribe()

	<-notifications // the deferred first read

	for _, phrase := range []string{"v1", "v2", "v3"} {
		_, err := store.Write(q, map[string]any{"glass": map[string]any{"phrase": phrase}}, atlas.Context{})
		require.NoError(t, err)
	}

	var seen []string
	for i := 0; i < 3; i++ {
		select {
		case v := <-notifications:
			m, err := v.ToMap()
			require.NoError(t, err)
			seen = append(seen, m["glass"].(map[string]any)["phrase"].(string))
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for notification %d", i)
		}
	}
	require.Equal(t, []string{"v1", "v2", "v3"}, seen, "notifications arrive in transaction order")
}

func TestObserve_NonExistentRoot_FailsSynchronously(t *testing.T) {
	store := atlas.NewStore()
	defer store.Close()

	q := mustParse(t, `{ glass { phrase } }`)
	_, err := store.Observe(q, atlas.Context{RootID: "Nowhere"})
	require.ErrorContains(t, err, "Cannot subscribe to non-existent node with id Nowhere")
}

func TestUnsubscribe_StopsFutureNotifications(t *testing.T) {
	store := atlas.NewStore()
	defer store.Close()

	q := mustParse(t, `{ glass { phrase } }`)
	_, err := store.Write(q, map[string]any{"glass": map[string]any{"phrase": "v0"}}, atlas.Context{})
	require.NoError(t, err)

	obs, err := store.Observe(q, atlas.Context{})
	require.NoError(t, err)

	notifications := make(chan *readengine.ObjectView, 4)
	unsubscribe := obs.Subscribe(atlas.Subscriber{Next: func(v *readengine.ObjectView) { notifications <- v }})
	<-notifications

	unsubscribe()

	_, err = store.Write(q, map[string]any{"glass": map[string]any{"phrase": "v1"}}, atlas.Context{})
	require.NoError(t, err)

	select {
	case <-notifications:
		t.Fatal("unsubscribed subscriber must not be notified")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestEventbus_WriteCommittedReachesSubscriber proves the eventbus wiring in
// Store.Write is live end-to-end: once a process installs a bus (the way
// cmd/atlas-demo does via eventbus.Use before otel.Setup), a Write's
// events.WriteCommitted actually reaches a subscriber instead of silently
// no-op'ing against a nil global bus.
func TestEventbus_WriteCommittedReachesSubscriber(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	received := make(chan events.WriteCommitted, 1)
	unsubscribe := eventbus.Subscribe(func(_ context.Context, e events.WriteCommitted) {
		received <- e
	})
	defer unsubscribe()

	store := atlas.NewStore()
	defer store.Close()

	q := mustParse(t, `{ glass { phrase } }`)
	_, err := store.Write(q, map[string]any{"glass": map[string]any{"phrase": "v0"}}, atlas.Context{})
	require.NoError(t, err)

	select {
	case e := <-received:
		require.False(t, e.Optimistic)
		require.Nil(t, e.Err)
	case <-time.After(time.Second):
		t.Fatal("expected WriteCommitted to reach the subscriber through the live eventbus")
	}
}

package habits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/storage"
)

var levels = [3]string{"10 min", "1 hr", "3 hr"}

func sequentialIDs() func() string {
	var n int64
	return func() string {
		return fmt.Sprintf("id-%d", atomic.AddInt64(&n, 1))
	}
}

// setupTestStore returns a loaded store over a fresh in-memory adapter
func setupTestStore(t *testing.T) (*Store, *storage.MemoryAdapter) {
	t.Helper()
	adapter := storage.NewMemoryAdapter()
	s := New(adapter, WithIDGenerator(sequentialIDs()))
	require.NoError(t, s.Load(context.Background()))
	return s, adapter
}

func readDocument(t *testing.T, adapter storage.Adapter) models.Document {
	t.Helper()
	data, err := adapter.Read(context.Background(), "habits.json")
	require.NoError(t, err)
	var doc models.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestLoadMissingDocumentInstallsDefaults(t *testing.T) {
	s, adapter := setupTestStore(t)

	habits := s.List()
	require.Len(t, habits, 3)
	assert.Equal(t, "Study", habits[0].Name)
	assert.Equal(t, 1, adapter.Writes(), "defaults should be persisted immediately")

	doc := readDocument(t, adapter)
	assert.Len(t, doc.Habits, 3)
	assert.Equal(t, models.DefaultSettings(), doc.Settings)
}

func TestLoadMissingDocumentWriteFailure(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	adapter.FailWrites(errors.New("read-only vault"))
	s := New(adapter)

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Len(t, s.List(), 3, "defaults stay usable in memory")
}

func TestLoadCorruptDocumentFallsBack(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	adapter.Seed("habits.json", []byte(`{"habits": [ this is not json`))
	s := New(adapter)

	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.List(), 3)
	assert.Equal(t, 0, adapter.Writes(), "a corrupt document is not overwritten on load")
}

func TestLoadReadFailureFallsBack(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	adapter.Seed("habits.json", []byte(`{"habits":[]}`))
	adapter.FailReads(errors.New("permission denied"))
	s := New(adapter)

	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.List(), 3)
}

func TestLoadDocumentShapes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantHabits int
		wantColors []string
	}{
		{
			name:       "missing habits key installs defaults",
			body:       `{"settings":{"defaultColors":["#000"]}}`,
			wantHabits: 3,
			wantColors: []string{"#000"},
		},
		{
			name:       "empty habits list is kept",
			body:       `{"habits":[]}`,
			wantHabits: 0,
			wantColors: models.DefaultSettings().DefaultColors,
		},
		{
			name:       "empty settings merge over defaults",
			body:       `{"habits":[{"id":"a","name":"Run","levels":["1","2","3"],"data":{},"color":"#fff"}],"settings":{}}`,
			wantHabits: 1,
			wantColors: models.DefaultSettings().DefaultColors,
		},
		{
			name:       "null settings",
			body:       `{"habits":[],"settings":null}`,
			wantHabits: 0,
			wantColors: models.DefaultSettings().DefaultColors,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := storage.NewMemoryAdapter()
			adapter.Seed("habits.json", []byte(tt.body))
			s := New(adapter)

			require.NoError(t, s.Load(context.Background()))
			assert.Len(t, s.List(), tt.wantHabits)
			assert.Equal(t, tt.wantColors, s.Settings().DefaultColors)
		})
	}
}

func TestLoadSanitizesRecords(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	adapter.Seed("habits.json", []byte(`{
		"habits": [
			{"id": "a", "name": "One", "levels": ["1","2","3"], "data": {"2024-06-01": 2, "2024-06-02": 9, "yesterday": 1}, "color": "#111"},
			{"id": "a", "name": "Two", "levels": ["1","2","3"], "color": "#222"}
		]
	}`))
	s := New(adapter, WithIDGenerator(sequentialIDs()))
	require.NoError(t, s.Load(context.Background()))

	habits := s.List()
	require.Len(t, habits, 2)
	assert.Equal(t, models.Record{"2024-06-01": 2}, habits[0].Record)
	assert.NotEqual(t, habits[0].ID, habits[1].ID, "duplicate ids are reassigned")
	assert.NotNil(t, habits[1].Record)
}

func TestCreate(t *testing.T) {
	s, adapter := setupTestStore(t)
	before := s.List()

	h, err := s.Create(context.Background(), "  Meditate ", levels, "#abcdef")
	require.NoError(t, err)

	habits := s.List()
	require.Len(t, habits, len(before)+1)
	last := habits[len(habits)-1]
	assert.Equal(t, h.ID, last.ID)
	assert.Equal(t, "Meditate", last.Name)
	assert.Equal(t, levels, last.Levels)
	assert.Empty(t, last.Record)
	for _, other := range before {
		assert.NotEqual(t, other.ID, h.ID)
	}

	doc := readDocument(t, adapter)
	assert.Equal(t, h.ID, doc.Habits[len(doc.Habits)-1].ID)
}

func TestCreateRapidSuccessionUsesDistinctIDs(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	s := New(adapter)
	require.NoError(t, s.Load(context.Background()))

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		h, err := s.Create(context.Background(), fmt.Sprintf("h%d", i), levels, "")
		require.NoError(t, err)
		require.False(t, seen[h.ID], "duplicate id %s", h.ID)
		seen[h.ID] = true
	}
}

func TestCreateSuggestsColor(t *testing.T) {
	s, _ := setupTestStore(t)

	h, err := s.Create(context.Background(), "Walk", levels, "")
	require.NoError(t, err)
	assert.Equal(t, models.SuggestColor(3), h.Color)
}

func TestCreateRejectsBadColor(t *testing.T) {
	s, adapter := setupTestStore(t)
	writes := adapter.Writes()

	_, err := s.Create(context.Background(), "Walk", levels, "green")
	assert.ErrorIs(t, err, ErrInvalidHabit)
	assert.Len(t, s.List(), 3)
	assert.Equal(t, writes, adapter.Writes())
}

func TestCreateRejectsEmptyName(t *testing.T) {
	s, adapter := setupTestStore(t)
	writes := adapter.Writes()

	_, err := s.Create(context.Background(), "   ", levels, "")
	assert.ErrorIs(t, err, ErrInvalidHabit)
	assert.Equal(t, writes, adapter.Writes())
	assert.Len(t, s.List(), 3)
}

func TestCreateRetriesCollidingID(t *testing.T) {
	ids := []string{"1", "2", "fresh"}
	i := 0
	s := New(storage.NewMemoryAdapter(), WithIDGenerator(func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}))
	require.NoError(t, s.Load(context.Background()))

	h, err := s.Create(context.Background(), "New", levels, "")
	require.NoError(t, err)
	assert.Equal(t, "fresh", h.ID)
}

func TestDelete(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetLevel(ctx, "2", "2024-06-01", models.LevelHigh))
	require.NoError(t, s.Delete(ctx, "2"))

	for _, h := range s.List() {
		assert.NotEqual(t, "2", h.ID)
	}
	_, err := s.Get("2")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "2"), ErrNotFound)
	assert.ErrorIs(t, s.SetLevel(ctx, "2", "2024-06-02", models.LevelLow), ErrNotFound)

	active, ok := models.ActiveHabit(s.List(), "2")
	require.True(t, ok)
	assert.Equal(t, "1", active.ID, "active selection falls back to the first habit")
}

func TestSetLevel(t *testing.T) {
	s, adapter := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetLevel(ctx, "1", "2024-06-01", models.LevelMid))
	require.NoError(t, s.SetLevel(ctx, "1", "2024-06-02", models.LevelHigh))
	require.NoError(t, s.SetLevel(ctx, "1", "2024-06-02", models.LevelRest))

	h, err := s.Get("1")
	require.NoError(t, err)
	assert.Equal(t, models.Record{"2024-06-01": 2, "2024-06-02": 0}, h.Record)

	doc := readDocument(t, adapter)
	assert.Equal(t, h.Record, doc.Habits[0].Record)
}

func TestSetLevelRejectsContractViolations(t *testing.T) {
	tests := []struct {
		name    string
		habitID string
		day     string
		level   models.Level
		wantErr error
	}{
		{"level above range", "1", "2024-06-01", 4, ErrInvalidLevel},
		{"negative level", "1", "2024-06-01", -1, ErrInvalidLevel},
		{"unknown habit", "missing", "2024-06-01", 1, ErrNotFound},
		{"malformed date", "1", "2024-6-1", 1, ErrInvalidDate},
		{"impossible date", "1", "2024-02-30", 1, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, adapter := setupTestStore(t)
			writes := adapter.Writes()
			notified := 0
			s.Subscribe(func() { notified++ })

			err := s.SetLevel(context.Background(), tt.habitID, tt.day, tt.level)
			assert.ErrorIs(t, err, tt.wantErr)

			h, _ := s.Get("1")
			assert.Empty(t, h.Record)
			assert.Equal(t, writes, adapter.Writes())
			assert.Zero(t, notified)
		})
	}
}

func TestUpdate(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SetLevel(ctx, "1", "2024-06-01", models.LevelLow))

	name := "Deep work"
	require.NoError(t, s.Update(ctx, "1", HabitUpdate{Name: &name}))

	h, err := s.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Deep work", h.Name)
	assert.Equal(t, models.DefaultHabits()[0].Levels, h.Levels, "levels untouched")
	assert.Equal(t, "#3b82f6", h.Color, "color untouched")
	assert.Equal(t, models.Record{"2024-06-01": 1}, h.Record, "record untouched")

	newLevels := [3]string{"a", "b", "c"}
	color := "#000000"
	require.NoError(t, s.Update(ctx, "1", HabitUpdate{Levels: &newLevels, Color: &color}))
	h, _ = s.Get("1")
	assert.Equal(t, newLevels, h.Levels)
	assert.Equal(t, color, h.Color)
	assert.Equal(t, "Deep work", h.Name)

	assert.ErrorIs(t, s.Update(ctx, "missing", HabitUpdate{Name: &name}), ErrNotFound)

	empty := " "
	assert.ErrorIs(t, s.Update(ctx, "1", HabitUpdate{Name: &empty}), ErrInvalidHabit)

	bad := "teal"
	assert.ErrorIs(t, s.Update(ctx, "1", HabitUpdate{Color: &bad}), ErrInvalidHabit)
	h, _ = s.Get("1")
	assert.Equal(t, color, h.Color)
}

func TestUpdateSettings(t *testing.T) {
	s, adapter := setupTestStore(t)
	ctx := context.Background()

	colors := []string{"#111111", "#222222"}
	require.NoError(t, s.UpdateSettings(ctx, models.Settings{DefaultColors: colors}))
	assert.Equal(t, colors, s.Settings().DefaultColors)
	assert.Equal(t, colors, readDocument(t, adapter).Settings.DefaultColors)

	h, err := s.Create(ctx, "Journal", [3]string{"a", "b", "c"}, "")
	require.NoError(t, err)
	assert.Equal(t, "#222222", h.Color, "suggestion comes from the configured colors")

	writes := adapter.Writes()
	err = s.UpdateSettings(ctx, models.Settings{DefaultColors: []string{"blue"}})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, writes, adapter.Writes())
	assert.Equal(t, colors, s.Settings().DefaultColors)
}

func TestListReturnsSnapshot(t *testing.T) {
	s, _ := setupTestStore(t)

	habits := s.List()
	habits[0].Name = "mutated"
	habits[0].Record["2024-01-01"] = models.LevelHigh

	fresh := s.List()
	require.Len(t, fresh, 3)
	assert.Equal(t, "Study", fresh[0].Name)
	assert.Empty(t, fresh[0].Record)

	settings := s.Settings()
	settings.DefaultColors[0] = "mutated"
	assert.NotEqual(t, "mutated", s.Settings().DefaultColors[0])
}

func TestSubscribe(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	var a, b int
	unsubA := s.Subscribe(func() { a++ })
	s.Subscribe(func() { b++ })

	require.NoError(t, s.SetLevel(ctx, "1", "2024-06-01", models.LevelLow))
	_, err := s.Create(ctx, "New", levels, "")
	require.NoError(t, err)
	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)

	unsubA()
	unsubA()
	require.NoError(t, s.Delete(ctx, "1"))
	assert.Equal(t, 2, a, "unsubscribed callback must not run")
	assert.Equal(t, 3, b)

	assert.Error(t, s.Delete(ctx, "1"))
	assert.Equal(t, 3, b, "failed mutation must not notify")
}

func TestSubscriberCanReadStore(t *testing.T) {
	s, _ := setupTestStore(t)

	var seen int
	s.Subscribe(func() { seen = len(s.List()) })

	_, err := s.Create(context.Background(), "New", levels, "")
	require.NoError(t, err)
	assert.Equal(t, 4, seen, "subscriber sees the committed state")
}

func TestWriteFailureIsReportedAndNotApplied(t *testing.T) {
	s, adapter := setupTestStore(t)
	ctx := context.Background()
	notified := 0
	s.Subscribe(func() { notified++ })

	diskFull := errors.New("disk full")
	adapter.FailWrites(diskFull)

	err := s.SetLevel(ctx, "1", "2024-06-01", models.LevelHigh)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, diskFull)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "write", perr.Op)

	_, err = s.Create(ctx, "Lost", levels, "")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, s.Delete(ctx, "2"), ErrPersistence)

	h, _ := s.Get("1")
	assert.Empty(t, h.Record)
	assert.Len(t, s.List(), 3)
	assert.Zero(t, notified)

	adapter.FailWrites(nil)
	require.NoError(t, s.SetLevel(ctx, "1", "2024-06-01", models.LevelHigh))
	assert.Equal(t, 1, notified, "store stays usable after a failed write")
}

func TestReloadSeesPersistedState(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	ctx := context.Background()

	s := New(adapter, WithIDGenerator(sequentialIDs()))
	require.NoError(t, s.Load(ctx))
	h, err := s.Create(ctx, "Journal", levels, "#123456")
	require.NoError(t, err)
	require.NoError(t, s.SetLevel(ctx, h.ID, "2024-07-01", models.LevelMid))
	require.NoError(t, s.Delete(ctx, "3"))

	reloaded := New(adapter)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.List(), reloaded.List())
}

func TestConcurrentMutations(t *testing.T) {
	s, adapter := setupTestStore(t)
	ctx := context.Background()

	var notified int64
	s.Subscribe(func() { atomic.AddInt64(&notified, 1) })

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			day := fmt.Sprintf("2024-05-%02d", i%31+1)
			habit := fmt.Sprintf("%d", i%3+1)
			assert.NoError(t, s.SetLevel(ctx, habit, day, models.LevelLow))
		}(i)
	}
	wg.Wait()

	total := 0
	for _, h := range s.List() {
		total += len(h.Record)
	}
	assert.Equal(t, n, total)
	assert.Equal(t, int64(n), atomic.LoadInt64(&notified))
	assert.Equal(t, n+1, adapter.Writes())

	doc := readDocument(t, adapter)
	persisted := 0
	for _, h := range doc.Habits {
		persisted += len(h.Record)
	}
	assert.Equal(t, n, persisted, "last write holds every mutation")
}

func TestFileAdapterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := New(storage.NewFileAdapter(dir))
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.SetLevel(ctx, "1", "2024-06-30", models.LevelHigh))

	data, err := os.ReadFile(filepath.Join(dir, "habits.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2024-06-30": 3`)
	assert.Contains(t, string(data), `"defaultColors"`)

	reloaded := New(storage.NewFileAdapter(dir))
	require.NoError(t, reloaded.Load(ctx))
	h, err := reloaded.Get("1")
	require.NoError(t, err)
	assert.Equal(t, models.LevelHigh, h.Record.Get("2024-06-30"))
}

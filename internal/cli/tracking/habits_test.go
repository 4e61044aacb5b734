package tracking

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/stats"
	"github.com/julianstephens/habitgrid/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	adapter := storage.NewFileAdapter(t.TempDir())
	store := habits.New(adapter)
	require.NoError(t, store.Load(context.Background()))

	out := &bytes.Buffer{}
	return &cli.Context{
		Store:   store,
		Adapter: adapter,
		TZ:      time.UTC,
		Now:     func() time.Time { return time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC) },
		Out:     out,
	}, out
}

func TestListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, ctx.Store.SetLevel(context.Background(), "1", "2024-07-01", models.LevelMid))
	require.NoError(t, ctx.Store.SetLevel(context.Background(), "1", "2024-06-30", models.LevelLow))

	require.NoError(t, (&ListCmd{}).Run(ctx))

	text := out.String()
	assert.Contains(t, text, "Study")
	assert.Contains(t, text, "Exercise")
	assert.Contains(t, text, "1 hr")
	assert.Contains(t, text, "streak: 2")
}

func TestAddCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &AddCmd{Name: "Meditate", Levels: []string{"5 min", "15 min", "30 min"}}
	require.NoError(t, cmd.Run(ctx))

	list := ctx.Store.List()
	require.Len(t, list, 4)
	last := list[3]
	assert.Equal(t, "Meditate", last.Name)
	assert.Equal(t, [3]string{"5 min", "15 min", "30 min"}, last.Levels)
	assert.Equal(t, models.SuggestColor(3), last.Color)
	assert.Contains(t, out.String(), last.ID)

	err := (&AddCmd{Name: "Bad", Levels: []string{"one"}}).Run(ctx)
	assert.ErrorIs(t, err, habits.ErrInvalidHabit)
	assert.Len(t, ctx.Store.List(), 4)
}

func TestEditCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)

	require.NoError(t, (&EditCmd{Habit: "Study", Name: "Deep work", Color: "#000000"}).Run(ctx))
	h, err := ctx.Store.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Deep work", h.Name)
	assert.Equal(t, "#000000", h.Color)
	assert.Equal(t, models.DefaultHabits()[0].Levels, h.Levels)

	require.NoError(t, (&EditCmd{Habit: "1", Levels: []string{"a", "b", "c"}}).Run(ctx))
	h, _ = ctx.Store.Get("1")
	assert.Equal(t, [3]string{"a", "b", "c"}, h.Levels)

	assert.Error(t, (&EditCmd{Habit: "1"}).Run(ctx), "an edit without changes is rejected")
	assert.ErrorIs(t, (&EditCmd{Habit: "nope", Name: "x"}).Run(ctx), habits.ErrNotFound)
}

func TestDeleteCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	err := (&DeleteCmd{Habit: "Exercise"}).Run(ctx)
	assert.Error(t, err, "non-interactive delete needs --yes")
	assert.Len(t, ctx.Store.List(), 3)

	require.NoError(t, (&DeleteCmd{Habit: "Exercise", Yes: true}).Run(ctx))
	assert.Len(t, ctx.Store.List(), 2)
	assert.Contains(t, out.String(), "Deleted habit: Exercise")

	mgr, ok := ctx.BackupManager()
	require.True(t, ok)
	backups, err := mgr.ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 1, "delete takes an automatic backup first")

	assert.ErrorIs(t, (&DeleteCmd{Habit: "2", Yes: true}).Run(ctx), habits.ErrNotFound)
}

func TestMarkCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&MarkCmd{Habit: "Reading", Level: 2, Date: "today"}).Run(ctx))
	require.NoError(t, (&MarkCmd{Habit: "Reading", Level: 1, Date: "yesterday"}).Run(ctx))
	require.NoError(t, (&MarkCmd{Habit: "3", Level: 0, Date: "2024-05-01"}).Run(ctx))

	h, err := ctx.Store.Get("3")
	require.NoError(t, err)
	assert.Equal(t, models.Record{"2024-07-01": 2, "2024-06-30": 1, "2024-05-01": 0}, h.Record)
	assert.Contains(t, out.String(), "Reading on 2024-07-01: 20 pages")
	assert.Contains(t, out.String(), "Reading on 2024-05-01: rest")

	assert.ErrorIs(t, (&MarkCmd{Habit: "3", Level: 4, Date: "today"}).Run(ctx), habits.ErrInvalidLevel)
	assert.ErrorIs(t, (&MarkCmd{Habit: "3", Level: 1, Date: "someday"}).Run(ctx), habits.ErrInvalidDate)
	assert.ErrorIs(t, (&MarkCmd{Habit: "Knitting", Level: 1, Date: "today"}).Run(ctx), habits.ErrNotFound)

	h, _ = ctx.Store.Get("3")
	assert.Len(t, h.Record, 3)
}

func TestMarkCmdRejectsFutureDay(t *testing.T) {
	ctx, _ := setupTestContext(t)

	err := (&MarkCmd{Habit: "1", Level: 3, Date: "2024-07-05"}).Run(ctx)
	assert.ErrorIs(t, err, habits.ErrInvalidDate)
	assert.Contains(t, err.Error(), "in the future")

	h, err := ctx.Store.Get("1")
	require.NoError(t, err)
	assert.Empty(t, h.Record)
	assert.Zero(t, stats.MonthlyCount(h.Record, stats.Month{Year: 2024, Month: time.July}))

	// late evening in the configured timezone is still today
	ctx.Now = func() time.Time { return time.Date(2024, 7, 1, 23, 59, 0, 0, time.UTC) }
	require.NoError(t, (&MarkCmd{Habit: "1", Level: 1, Date: "2024-07-01"}).Run(ctx))
}

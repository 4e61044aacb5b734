// Package habits owns the habit collection: every change goes through a
// Store, is written to durable storage as one document, and is then announced
// to subscribers.
package habits

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/storage"
)

// HabitUpdate lists the fields to change on a habit. Nil fields are left as
// they are. The record is never changed through an update.
type HabitUpdate struct {
	Name   *string
	Levels *[3]string
	Color  *string
}

// Store is the single source of truth for the habit collection.
//
// Mutations are serialized: validate, write the whole document, swap the new
// state in, notify. A failed write leaves the previous state in place and
// nobody is notified.
type Store struct {
	adapter storage.Adapter
	name    string
	newID   func() string

	// writeMu serializes whole mutation sequences, notification included
	writeMu sync.Mutex

	mu     sync.RWMutex
	doc    models.Document

	subMu   sync.Mutex
	subs    map[uint64]func()
	nextSub uint64
}

// New returns a store over the given adapter, holding the default collection
// until Load is called.
func New(adapter storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		doc:     models.DefaultDocument(),
		subs:    make(map[uint64]func()),
	}
	defaultOptions(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted document.
//
// A missing document is replaced by the defaults, which are written right
// away; a failure of that write is returned. An unreadable or malformed
// document is logged and the defaults are used in memory only.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	exists, err := s.adapter.Exists(ctx, s.name)
	if err != nil {
		s.fallback("check", err)
		return nil
	}

	if !exists {
		logger.Info("No habit document found, installing defaults", "location", s.adapter.Location())
		doc := models.DefaultDocument()
		s.setDoc(doc)
		return s.persist(ctx, doc)
	}

	data, err := s.adapter.Read(ctx, s.name)
	if err != nil {
		s.fallback("read", err)
		return nil
	}

	doc, err := decodeDocument(data)
	if err != nil {
		s.fallback("decode", err)
		return nil
	}
	sanitize(&doc, s.newID)

	s.setDoc(doc)
	logger.Info("Loaded habits", "count", len(doc.Habits), "location", s.adapter.Location())
	return nil
}

func (s *Store) fallback(op string, err error) {
	logger.Error("Failed to load habit document, using defaults",
		"op", op, "document", s.name, "error", err)
	s.setDoc(models.DefaultDocument())
}

func (s *Store) setDoc(doc models.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, doc models.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return &PersistenceError{Op: "encode", Name: s.name, Err: err}
	}
	if err := s.adapter.Write(ctx, s.name, data); err != nil {
		logger.Error("Failed to save habit document", "document", s.name, "error", err)
		return &PersistenceError{Op: "write", Name: s.name, Err: err}
	}
	return nil
}

// mutate applies change to a copy of the current document, persists the copy
// and only then makes it current and notifies subscribers.
func (s *Store) mutate(ctx context.Context, change func(doc *models.Document) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	next := s.doc.Clone()
	s.mu.RUnlock()

	if err := change(&next); err != nil {
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = next
	s.mu.Unlock()

	s.notify()
	return nil
}

// List returns a snapshot of the collection in display order
func (s *Store) List() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Habit, len(s.doc.Habits))
	for i, h := range s.doc.Habits {
		out[i] = h.Clone()
	}
	return out
}

// Get returns a copy of one habit
func (s *Store) Get(id string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.doc.Habits, id)
	if i < 0 {
		return models.Habit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.doc.Habits[i].Clone(), nil
}

// Settings returns a copy of the persisted settings
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Settings.Clone()
}

// SetLevel records level for the habit on day (YYYY-MM-DD). Marking a day
// with level 0 stores an explicit rest entry.
func (s *Store) SetLevel(ctx context.Context, habitID, day string, level models.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d (expected 0-3)", ErrInvalidLevel, int(level))
	}
	if _, err := models.ParseDay(day); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	return s.mutate(ctx, func(doc *models.Document) error {
		i := indexOf(doc.Habits, habitID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, habitID)
		}
		doc.Habits[i].Record[day] = level
		logger.Debug("Set habit level", "habit", habitID, "day", day, "level", int(level))
		return nil
	})
}

// Create appends a new habit with an empty record. An empty color is
// replaced by a palette suggestion.
func (s *Store) Create(ctx context.Context, name string, levels [3]string, color string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidHabit)
	}
	if color != "" && !models.ValidColor(color) {
		return models.Habit{}, fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidHabit, color)
	}

	var created models.Habit
	err := s.mutate(ctx, func(doc *models.Document) error {
		id, err := s.uniqueID(doc.Habits)
		if err != nil {
			return err
		}
		if color == "" {
			color = doc.Settings.SuggestColor(len(doc.Habits))
		}
		created = models.Habit{
			ID:     id,
			Name:   name,
			Levels: levels,
			Record: models.Record{},
			Color:  color,
		}
		doc.Habits = append(doc.Habits, created)
		logger.Debug("Created habit", "habit", id, "name", name)
		return nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	return created.Clone(), nil
}

func (s *Store) uniqueID(habits []models.Habit) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id := s.newID()
		if id != "" && indexOf(habits, id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique habit id")
}

// Update merges the non-nil fields of u into the habit
func (s *Store) Update(ctx context.Context, habitID string, u HabitUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidHabit)
	}
	if u.Color != nil && !models.ValidColor(*u.Color) {
		return fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidHabit, *u.Color)
	}

	return s.mutate(ctx, func(doc *models.Document) error {
		i := indexOf(doc.Habits, habitID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, habitID)
		}
		h := &doc.Habits[i]
		if u.Name != nil {
			h.Name = strings.TrimSpace(*u.Name)
		}
		if u.Levels != nil {
			h.Levels = *u.Levels
		}
		if u.Color != nil {
			h.Color = *u.Color
		}
		logger.Debug("Updated habit", "habit", habitID)
		return nil
	})
}

// Delete removes the habit together with its record
func (s *Store) Delete(ctx context.Context, habitID string) error {
	return s.mutate(ctx, func(doc *models.Document) error {
		i := indexOf(doc.Habits, habitID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, habitID)
		}
		doc.Habits = append(doc.Habits[:i], doc.Habits[i+1:]...)
		logger.Debug("Deleted habit", "habit", habitID)
		return nil
	})
}

// UpdateSettings replaces the persisted settings
func (s *Store) UpdateSettings(ctx context.Context, settings models.Settings) error {
	for _, c := range settings.DefaultColors {
		if !models.ValidColor(c) {
			return fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidSettings, c)
		}
	}

	return s.mutate(ctx, func(doc *models.Document) error {
		doc.Settings = settings.Clone()
		logger.Debug("Updated settings", "colors", len(settings.DefaultColors))
		return nil
	})
}

// Subscribe registers fn to run once after every successful mutation and
// returns a function that removes it. Callbacks run synchronously on the
// mutating goroutine while mutations are still serialized: they may read the
// store but must not mutate it, or they deadlock.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close releases the underlying adapter
func (s *Store) Close() error {
	return s.adapter.Close()
}

func indexOf(habits []models.Habit, id string) int {
	for i, h := range habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

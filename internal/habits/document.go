package habits

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/models"
)

// wireDocument distinguishes a missing key from an empty value while decoding
type wireDocument struct {
	Habits   *[]models.Habit `json:"habits"`
	Settings json.RawMessage `json:"settings"`
}

// decodeDocument parses a persisted document and fills whatever it lacks
// from the defaults. Settings found in the file override the default ones.
func decodeDocument(data []byte) (models.Document, error) {
	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return models.Document{}, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := models.Document{Settings: models.DefaultSettings()}
	if len(wire.Settings) > 0 && string(wire.Settings) != "null" {
		var loaded models.Settings
		if err := json.Unmarshal(wire.Settings, &loaded); err != nil {
			return models.Document{}, fmt.Errorf("failed to parse settings: %w", err)
		}
		if len(loaded.DefaultColors) > 0 {
			doc.Settings.DefaultColors = loaded.DefaultColors
		}
	}

	if wire.Habits == nil {
		doc.Habits = models.DefaultHabits()
	} else {
		doc.Habits = *wire.Habits
	}

	return doc, nil
}

func encodeDocument(doc models.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// sanitize enforces the collection invariants on a loaded document: every
// habit has a unique non-empty id and a record holding only valid days and
// levels. Offending entries are dropped with a warning.
func sanitize(doc *models.Document, newID func() string) {
	seen := make(map[string]bool, len(doc.Habits))
	for i := range doc.Habits {
		h := &doc.Habits[i]

		if h.ID == "" || seen[h.ID] {
			fresh := newID()
			logger.Warn("Reassigned habit id", "habit", h.Name, "old", h.ID, "new", fresh)
			h.ID = fresh
		}
		seen[h.ID] = true

		if h.Record == nil {
			h.Record = models.Record{}
		}
		for day, level := range h.Record {
			if _, err := models.ParseDay(day); err != nil {
				logger.Warn("Dropped record entry with invalid date", "habit", h.ID, "day", day)
				delete(h.Record, day)
				continue
			}
			if !level.Valid() {
				logger.Warn("Dropped record entry with invalid level", "habit", h.ID, "day", day, "level", int(level))
				delete(h.Record, day)
			}
		}
	}
}

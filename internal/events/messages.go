package events

import (
	"encoding/json"
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
)

// HabitsChangedMessage announces that the habit collection was saved.
// Consumers fetch the document themselves; the message only says what
// changed shape.
type HabitsChangedMessage struct {
	HabitCount int       `json:"habitCount"`
	HabitIDs   []string  `json:"habitIds"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewHabitsChangedMessage describes the given collection snapshot
func NewHabitsChangedMessage(habits []models.Habit, now time.Time) *HabitsChangedMessage {
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	return &HabitsChangedMessage{
		HabitCount: len(habits),
		HabitIDs:   ids,
		Timestamp:  now,
	}
}

// ToJSON converts the message to JSON bytes
func (m *HabitsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// HabitsChangedMessageFromJSON creates a message from JSON bytes
func HabitsChangedMessageFromJSON(data []byte) (*HabitsChangedMessage, error) {
	var msg HabitsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

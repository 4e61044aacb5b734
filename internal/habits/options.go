package habits

import (
	"github.com/google/uuid"

	"github.com/julianstephens/habitgrid/internal/constants"
)

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the id source for new habits. The generator must
// not repeat a value within the process lifetime.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithDocumentName overrides the name the document is stored under
func WithDocumentName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

func defaultOptions(s *Store) {
	s.newID = func() string { return uuid.New().String() }
	s.name = constants.DocumentName
}

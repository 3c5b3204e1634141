package entity

import (
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/valueobject"
)

// Mark is a named instant on the timeline.
type Mark struct {
	Name      string
	At        instant.Instant
	Labels    valueobject.Labels
	CreatedAt time.Time
}

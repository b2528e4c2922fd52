package location

import (
	"context"
	"fmt"

	"github.com/lox/weatherscreen/internal/models"
)

// Static reports fixed, configured coordinates.
type Static struct {
	consent
	coords models.Coordinates
}

// NewStatic returns a provider for coords. allowed is the answer to the
// permission request.
func NewStatic(coords models.Coordinates, allowed bool) *Static {
	return &Static{consent: consent(allowed), coords: coords}
}

func (s *Static) Name() string { return "static" }

func (s *Static) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	if !validCoordinates(s.coords) {
		return models.Coordinates{}, fmt.Errorf("coordinates out of range: %.4f,%.4f", s.coords.Latitude, s.coords.Longitude)
	}
	return s.coords, nil
}

func validCoordinates(c models.Coordinates) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

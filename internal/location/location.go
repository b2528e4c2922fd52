// Package location acquires the host's coordinates behind a permission check.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/weatherscreen/internal/metrics"
	"github.com/lox/weatherscreen/internal/models"
)

type Permission int

const (
	Denied Permission = iota
	Granted
)

func (p Permission) String() string {
	if p == Granted {
		return "granted"
	}
	return "denied"
}

// ErrPermissionDenied is returned when the location permission is refused.
// Its message is shown to the user as is.
var ErrPermissionDenied = errors.New("Location permission not granted")

// AcquisitionError wraps a failure to read a position after permission was granted.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire location from %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Provider is a permission-gated, one-shot position source.
type Provider interface {
	Name() string
	RequestPermission(ctx context.Context) (Permission, error)
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// RequestCoordinates asks p for permission and then for a single position.
func RequestCoordinates(ctx context.Context, p Provider) (models.Coordinates, error) {
	perm, err := p.RequestPermission(ctx)
	if err != nil {
		metrics.LocationRequestsTotal.WithLabelValues("error").Inc()
		return models.Coordinates{}, &AcquisitionError{Source: p.Name(), Err: fmt.Errorf("request permission: %w", err)}
	}
	if perm != Granted {
		metrics.LocationRequestsTotal.WithLabelValues("denied").Inc()
		return models.Coordinates{}, ErrPermissionDenied
	}

	coords, err := p.CurrentPosition(ctx)
	if err != nil {
		metrics.LocationRequestsTotal.WithLabelValues("error").Inc()
		var ae *AcquisitionError
		if errors.As(err, &ae) {
			return models.Coordinates{}, err
		}
		return models.Coordinates{}, &AcquisitionError{Source: p.Name(), Err: err}
	}

	metrics.LocationRequestsTotal.WithLabelValues("ok").Inc()
	return coords, nil
}

// consent is the permission answer shared by the providers in this package.
type consent bool

func (c consent) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return Denied, err
	}
	if c {
		return Granted, nil
	}
	return Denied, nil
}

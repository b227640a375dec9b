// Package decoder turns raw status payloads into occupancy snapshots.
package decoder

import (
	"encoding/json"
	"errors"
	"fmt"

	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

// ErrMalformedPayload is wrapped by every error Decode returns.
var ErrMalformedPayload = errors.New("malformed payload")

// wireSnapshot mirrors the payload with pointer fields so missing keys can be
// told apart from zero values.
type wireSnapshot struct {
	Device       *string      `json:"device"`
	Free         *int         `json:"free"`
	Occupied     *int         `json:"occupied"`
	Availability *int         `json:"availability"`
	Places       *[]wirePlace `json:"places"`
}

type wirePlace struct {
	Place    *parkingv1alpha1.PlaceID `json:"place"`
	Occupied *bool                    `json:"occupied"`
	Distance *float64                 `json:"distance"`
}

// Decode parses one payload. The returned snapshot is only valid when err is nil.
func Decode(payload []byte) (parkingv1alpha1.OccupancySnapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(payload, &w); err != nil {
		return parkingv1alpha1.OccupancySnapshot{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if err := w.validate(); err != nil {
		return parkingv1alpha1.OccupancySnapshot{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	snap := parkingv1alpha1.OccupancySnapshot{
		Device:       *w.Device,
		Free:         *w.Free,
		Occupied:     *w.Occupied,
		Availability: *w.Availability,
		Places:       make([]parkingv1alpha1.SpaceStatus, 0, len(*w.Places)),
	}
	for _, p := range *w.Places {
		snap.Places = append(snap.Places, parkingv1alpha1.SpaceStatus{
			Place:    *p.Place,
			Occupied: *p.Occupied,
			Distance: *p.Distance,
		})
	}

	return snap, nil
}

func (w *wireSnapshot) validate() error {
	switch {
	case w.Device == nil:
		return missing("device")
	case w.Free == nil:
		return missing("free")
	case w.Occupied == nil:
		return missing("occupied")
	case w.Availability == nil:
		return missing("availability")
	case w.Places == nil:
		return missing("places")
	}

	if *w.Free < 0 {
		return fmt.Errorf("free must not be negative, got %d", *w.Free)
	}
	if *w.Occupied < 0 {
		return fmt.Errorf("occupied must not be negative, got %d", *w.Occupied)
	}
	if *w.Availability < 0 || *w.Availability > 100 {
		return fmt.Errorf("availability must be within 0-100, got %d", *w.Availability)
	}

	seen := make(map[string]struct{}, len(*w.Places))
	for i, p := range *w.Places {
		switch {
		case p.Place == nil:
			return missing(fmt.Sprintf("places[%d].place", i))
		case p.Occupied == nil:
			return missing(fmt.Sprintf("places[%d].occupied", i))
		case p.Distance == nil:
			return missing(fmt.Sprintf("places[%d].distance", i))
		}

		id := p.Place.String()
		if _, dup := seen[id]; dup {
			return fmt.Errorf("places[%d].place %q is repeated", i, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

func missing(field string) error {
	return fmt.Errorf("required field %q is missing", field)
}

package vapi

import (
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
)

// Vehicle is the vehicle resource. UpdatedAt is assigned by the server in
// milliseconds since the epoch and is only present in responses.
type Vehicle struct {
	VIN           string `json:"vin"                  yaml:"vin"`
	Make          string `json:"make"                 yaml:"make"`
	Model         string `json:"model"                yaml:"model"`
	Year          int    `json:"year"                 yaml:"year"`
	ExteriorColor string `json:"exterior_color"       yaml:"exterior_color"`
	InteriorColor string `json:"interior_color"       yaml:"interior_color"`
	UpdatedAt     int64  `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// UpdatedTime converts UpdatedAt into a time.Time. It returns the zero time when unset.
func (v Vehicle) UpdatedTime() time.Time {
	if v.UpdatedAt == 0 {
		return time.Time{}
	}

	return time.UnixMilli(v.UpdatedAt)
}

// VehicleFilter selects vehicles by attribute. Values within a field are OR'd,
// distinct fields are AND'd by the server.
type VehicleFilter struct {
	Makes          []string
	Models         []string
	Years          []int
	ExteriorColors []string
	InteriorColors []string
}

// Values encodes the filter as query parameters, repeating keys for multiple values.
func (f VehicleFilter) Values() url.Values {
	values := url.Values{}

	for _, name := range f.Makes {
		values.Add(constants.QueryMake, name)
	}

	for _, model := range f.Models {
		values.Add(constants.QueryModel, model)
	}

	for _, year := range f.Years {
		values.Add(constants.QueryYear, strconv.Itoa(year))
	}

	for _, color := range f.ExteriorColors {
		values.Add(constants.QueryExteriorColor, color)
	}

	for _, color := range f.InteriorColors {
		values.Add(constants.QueryInteriorColor, color)
	}

	return values
}

// IsEmpty reports whether the filter selects every vehicle.
func (f VehicleFilter) IsEmpty() bool {
	return len(f.Values()) == 0
}

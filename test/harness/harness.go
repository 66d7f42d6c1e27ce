package harness

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// Harness owns the server state a test creates.
type Harness struct {
	vehicles vapi.VehiclesClient
	config   *Config
	logger   vapi.Logger

	mu      sync.Mutex
	created []string
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger reports progress through logger.
func WithLogger(logger vapi.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a harness over vehicles.
func New(vehicles vapi.VehiclesClient, config *Config, opts ...Option) *Harness {
	h := &Harness{
		vehicles: vehicles,
		config:   config,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Harness) log(msg string, fields map[string]interface{}) {
	if h.logger != nil {
		h.logger.Info(msg, fields)
	}
}

// WaitReady lists vehicles until the server answers 200, pausing ReadyInterval between
// attempts. It gives up after ReadyAttempts with ErrServerNotReady.
func (h *Harness) WaitReady(ctx context.Context) error {
	attempts := max(h.config.ReadyAttempts, 1)

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		pages, err := h.vehicles.List(ctx)

		switch {
		case err != nil:
			lastErr = err
		case pages[0].StatusCode == http.StatusOK:
			return nil
		default:
			lastErr = fmt.Errorf("%w: %d", constants.ErrUnexpectedStatus, pages[0].StatusCode)
		}

		h.log("Vehicle API not ready", map[string]interface{}{"attempt": attempt, "error": lastErr.Error()})

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(h.config.ReadyInterval)

		select {
		case <-ctx.Done():
			timer.Stop()

			return fmt.Errorf("%w: %w", constants.ErrServerNotReady, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", constants.ErrServerNotReady, attempts, lastErr)
}

// UniquePrefix returns a VIN prefix unique to one test run, so runs sharing a server
// do not collide.
func UniquePrefix() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0] + "-"
}

// Spec describes the vehicles GenerateVehicles builds.
type Spec struct {
	Make          string
	Model         string
	Year          int
	ExteriorColor string
	InteriorColor string
}

// GenerateVehicles builds count vehicles with VINs "{prefix}{make}.{model}.{i}".
func GenerateVehicles(prefix string, spec Spec, count int) []vapi.Vehicle {
	vehicles := make([]vapi.Vehicle, 0, count)

	for i := 0; i < count; i++ {
		vehicles = append(vehicles, vapi.Vehicle{
			VIN:           fmt.Sprintf("%s%s.%s.%d", prefix, spec.Make, spec.Model, i),
			Make:          spec.Make,
			Model:         spec.Model,
			Year:          spec.Year,
			ExteriorColor: spec.ExteriorColor,
			InteriorColor: spec.InteriorColor,
		})
	}

	return vehicles
}

// CreateAll creates each vehicle in order. It stops at the first response other than 200.
// Created VINs are remembered for Cleanup.
func (h *Harness) CreateAll(ctx context.Context, vehicles []vapi.Vehicle) error {
	for i := range vehicles {
		resp, err := h.vehicles.Create(ctx, &vehicles[i])
		if err != nil {
			return fmt.Errorf("creating %s: %w", vehicles[i].VIN, err)
		}

		h.log("Created vehicle", map[string]interface{}{"vin": vehicles[i].VIN, "status_code": resp.StatusCode})

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: creating %s returned %d", constants.ErrUnexpectedStatus, vehicles[i].VIN, resp.StatusCode)
		}

		h.mu.Lock()
		h.created = append(h.created, vehicles[i].VIN)
		h.mu.Unlock()
	}

	return nil
}

// GetAll fetches each vehicle and returns them decoded. A vehicle that cannot be fetched
// fails with ErrVehicleMissing naming its VIN.
func (h *Harness) GetAll(ctx context.Context, vehicles []vapi.Vehicle) ([]vapi.Vehicle, error) {
	fetched := make([]vapi.Vehicle, 0, len(vehicles))

	for _, vehicle := range vehicles {
		resp, err := h.vehicles.Get(ctx, vehicle.VIN)
		if err != nil {
			return nil, fmt.Errorf("getting %s: %w", vehicle.VIN, err)
		}

		h.log("Got vehicle", map[string]interface{}{"vin": vehicle.VIN, "status_code": resp.StatusCode})

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s returned %d", constants.ErrVehicleMissing, vehicle.VIN, resp.StatusCode)
		}

		decoded, err := vapi.DecodeVehicle(resp)
		if err != nil {
			return nil, err
		}

		fetched = append(fetched, *decoded)
	}

	return fetched, nil
}

// DeleteAll removes every vehicle on the server and returns how many were deleted.
func (h *Harness) DeleteAll(ctx context.Context) (int, error) {
	vehicles, err := h.vehicles.ListVehicles(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing vehicles: %w", err)
	}

	vins := make([]string, 0, len(vehicles))
	for _, vehicle := range vehicles {
		vins = append(vins, vehicle.VIN)
	}

	return h.deleteVINs(ctx, vins, false)
}

// Cleanup deletes the vehicles this harness created. Vehicles already gone are skipped.
func (h *Harness) Cleanup(ctx context.Context) error {
	h.mu.Lock()
	vins := h.created
	h.created = nil
	h.mu.Unlock()

	_, err := h.deleteVINs(ctx, vins, true)

	return err
}

func (h *Harness) deleteVINs(ctx context.Context, vins []string, allowMissing bool) (int, error) {
	deleted := 0

	for _, vin := range vins {
		resp, err := h.vehicles.Delete(ctx, vin)
		if err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", vin, err)
		}

		h.log("Deleted vehicle", map[string]interface{}{"vin": vin, "status_code": resp.StatusCode})

		switch {
		case resp.StatusCode == http.StatusNoContent:
			deleted++
		case allowMissing && resp.StatusCode == http.StatusNotFound:
		default:
			return deleted, fmt.Errorf("%w: deleting %s returned %d", constants.ErrUnexpectedStatus, vin, resp.StatusCode)
		}
	}

	return deleted, nil
}

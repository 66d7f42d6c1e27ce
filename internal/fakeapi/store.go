package fakeapi

import (
	"crypto/md5" //nolint:gosec // ETags are version tokens, not digests
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

var (
	errDuplicateVIN = errors.New("duplicate key value violates unique constraint")
	errNotFound     = errors.New("vehicle doesn't exist")
	errStaleETag    = errors.New("etag does not match")
)

// store keeps vehicles in memory keyed by vin. Timestamps are milliseconds and strictly
// increase across writes so two quick updates never share an ETag.
type store struct {
	mu         sync.Mutex
	vehicles   *cache.Cache
	now        func() time.Time
	lastMillis int64
}

func newStore(now func() time.Time) *store {
	return &store{
		vehicles: cache.New(cache.NoExpiration, 0),
		now:      now,
	}
}

func (s *store) timestamp() int64 {
	millis := s.now().UnixMilli()
	if millis <= s.lastMillis {
		millis = s.lastMillis + 1
	}

	s.lastMillis = millis

	return millis
}

func (s *store) create(vehicle vapi.Vehicle) (vapi.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle.UpdatedAt = s.timestamp()

	err := s.vehicles.Add(vehicle.VIN, vehicle, cache.NoExpiration)
	if err != nil {
		return vapi.Vehicle{}, fmt.Errorf("%w: vin %s", errDuplicateVIN, vehicle.VIN)
	}

	return vehicle, nil
}

func (s *store) get(vin string) (vapi.Vehicle, bool) {
	item, found := s.vehicles.Get(vin)
	if !found {
		return vapi.Vehicle{}, false
	}

	vehicle, ok := item.(vapi.Vehicle)

	return vehicle, ok
}

// update replaces the vehicle stored under vin. A non-empty tag must equal the current
// ETag; the comparison and the write happen under one lock.
func (s *store) update(vin string, vehicle vapi.Vehicle, tag string) (vapi.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.checkTag(vin, tag)
	if err != nil {
		return vapi.Vehicle{}, err
	}

	vehicle.VIN = vin
	vehicle.UpdatedAt = s.timestamp()

	s.vehicles.Set(vin, vehicle, cache.NoExpiration)

	return vehicle, nil
}

// delete removes vin, honouring tag the same way update does.
func (s *store) delete(vin, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.checkTag(vin, tag)
	if err != nil {
		return err
	}

	s.vehicles.Delete(vin)

	return nil
}

// checkTag must be called with mu held.
func (s *store) checkTag(vin, tag string) error {
	current, found := s.get(vin)
	if !found {
		return fmt.Errorf("%w: vin %s", errNotFound, vin)
	}

	if tag != "" && tag != etag(current) {
		return fmt.Errorf("%w: vin %s", errStaleETag, vin)
	}

	return nil
}

// list returns every vehicle ordered by vin.
func (s *store) list() []vapi.Vehicle {
	items := s.vehicles.Items()

	vehicles := make([]vapi.Vehicle, 0, len(items))
	for _, item := range items {
		if vehicle, ok := item.Object.(vapi.Vehicle); ok {
			vehicles = append(vehicles, vehicle)
		}
	}

	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].VIN < vehicles[j].VIN
	})

	return vehicles
}

func (s *store) count() int {
	return s.vehicles.ItemCount()
}

func etag(vehicle vapi.Vehicle) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf("%s.%d", vehicle.VIN, vehicle.UpdatedAt)))) //nolint:gosec
}

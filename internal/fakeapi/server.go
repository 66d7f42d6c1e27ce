// Package fakeapi serves an in-memory vehicle API for tests. It answers the same routes,
// status codes and caching headers as the real service.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// epoch disables time based caching when sent as Expires.
var epoch = time.Unix(0, 0).UTC().Format(http.TimeFormat)

var filterKeys = map[string]func(vapi.Vehicle) string{
	constants.QueryMake:          func(v vapi.Vehicle) string { return v.Make },
	constants.QueryModel:         func(v vapi.Vehicle) string { return v.Model },
	constants.QueryYear:          func(v vapi.Vehicle) string { return strconv.Itoa(v.Year) },
	constants.QueryExteriorColor: func(v vapi.Vehicle) string { return v.ExteriorColor },
	constants.QueryInteriorColor: func(v vapi.Vehicle) string { return v.InteriorColor },
}

// ErrorResponse is the body sent with 4xx and 5xx statuses that carry a message.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Server is an http.Handler serving /api/vehicles.
type Server struct {
	router   *mux.Router
	store    *store
	pageSize int
	logger   vapi.Logger
	requests atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

// WithPageSize splits listings into pages of size vehicles linked by Link rel="next".
// Zero returns every vehicle in one response.
func WithPageSize(size int) Option {
	return func(s *Server) {
		s.pageSize = size
	}
}

// WithLogger logs every request.
func WithLogger(logger vapi.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock replaces time.Now for updated_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.store.now = now
	}
}

// New creates a Server with an empty store.
func New(opts ...Option) *Server {
	server := &Server{
		router: mux.NewRouter(),
		store:  newStore(time.Now),
	}

	for _, opt := range opts {
		opt(server)
	}

	api := server.router.PathPrefix(constants.APIPathPrefix).Subrouter()
	api.Use(server.countRequests)
	api.HandleFunc("/vehicles", server.list).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", server.create).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{vin}", server.get).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{vin}", server.update).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{vin}", server.delete).Methods(http.MethodDelete)

	return server
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.router.ServeHTTP(writer, request)
}

// Requests returns how many API requests have been served.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Len returns the number of stored vehicles.
func (s *Server) Len() int {
	return s.store.count()
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		s.requests.Add(1)

		if s.logger != nil {
			s.logger.Debug("fake API request", map[string]interface{}{
				"method":     request.Method,
				"url":        request.URL.String(),
				"request_id": request.Header.Get(constants.HeaderRequestID),
			})
		}

		next.ServeHTTP(writer, request)
	})
}

func (s *Server) list(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	page := 1

	if raw := query.Get(constants.QueryPage); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondErr(writer, http.StatusBadRequest, fmt.Sprintf("Invalid page: %s", raw))

			return
		}

		page = parsed
	}

	filters := url.Values{}

	for key, values := range query {
		if key == constants.QueryPage {
			continue
		}

		if _, ok := filterKeys[key]; !ok {
			respondErr(writer, http.StatusBadRequest, "Invalid query param: "+key)

			return
		}

		filters[key] = values
	}

	vehicles := make([]vapi.Vehicle, 0)

	for _, vehicle := range s.store.list() {
		if matches(vehicle, filters) {
			vehicles = append(vehicles, vehicle)
		}
	}

	if s.pageSize > 0 {
		start := min((page-1)*s.pageSize, len(vehicles))
		end := min(start+s.pageSize, len(vehicles))

		if end < len(vehicles) {
			writer.Header().Set(constants.HeaderLink, nextLink(request, page+1))
		}

		vehicles = vehicles[start:end]
	}

	respond(writer, http.StatusOK, vehicles)
}

// matches reports whether vehicle satisfies every filter key, any value per key.
func matches(vehicle vapi.Vehicle, filters url.Values) bool {
	for key, values := range filters {
		field := filterKeys[key](vehicle)
		found := false

		for _, value := range values {
			if field == value {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// nextLink builds an absolute Link header pointing at page, keeping the request's filters.
func nextLink(request *http.Request, page int) string {
	query := request.URL.Query()
	query.Set(constants.QueryPage, strconv.Itoa(page))

	next := url.URL{
		Scheme:   "http",
		Host:     request.Host,
		Path:     request.URL.Path,
		RawQuery: query.Encode(),
	}

	return fmt.Sprintf("<%s>; rel=%q", next.String(), constants.RelNext)
}

func (s *Server) create(writer http.ResponseWriter, request *http.Request) {
	vehicle, ok := decodeVehicle(writer, request, true)
	if !ok {
		return
	}

	created, err := s.store.create(vehicle)
	if err != nil {
		respondErr(writer, http.StatusBadRequest, err.Error())

		return
	}

	respondETag(writer, http.StatusOK, created)
}

func (s *Server) get(writer http.ResponseWriter, request *http.Request) {
	vin := mux.Vars(request)["vin"]

	vehicle, found := s.store.get(vin)
	if !found {
		writer.WriteHeader(http.StatusNotFound)

		return
	}

	if tag := request.Header.Get(constants.HeaderIfNoneMatch); tag != "" && tag == etag(vehicle) {
		writer.WriteHeader(http.StatusNotModified)

		return
	}

	respondETag(writer, http.StatusOK, vehicle)
}

func (s *Server) update(writer http.ResponseWriter, request *http.Request) {
	vehicle, ok := decodeVehicle(writer, request, false)
	if !ok {
		return
	}

	updated, err := s.store.update(mux.Vars(request)["vin"], vehicle, request.Header.Get(constants.HeaderIfNoneMatch))
	if err != nil {
		writer.WriteHeader(writeStatus(err))

		return
	}

	respondETag(writer, http.StatusOK, updated)
}

func (s *Server) delete(writer http.ResponseWriter, request *http.Request) {
	err := s.store.delete(mux.Vars(request)["vin"], request.Header.Get(constants.HeaderIfNoneMatch))
	if err != nil {
		writer.WriteHeader(writeStatus(err))

		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

// writeStatus maps a failed conditional write to its status. If-None-Match on a write must
// carry the current ETag; a missing vehicle is 404 whatever the tag.
func writeStatus(err error) int {
	if errors.Is(err, errStaleETag) {
		return http.StatusPreconditionFailed
	}

	return http.StatusNotFound
}

func decodeVehicle(writer http.ResponseWriter, request *http.Request, requireVIN bool) (vapi.Vehicle, bool) {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))
	if err != nil || mediaType != constants.ContentTypeJSON {
		writer.WriteHeader(http.StatusUnsupportedMediaType)

		return vapi.Vehicle{}, false
	}

	var vehicle vapi.Vehicle

	err = json.NewDecoder(request.Body).Decode(&vehicle)
	if err != nil {
		respondErr(writer, http.StatusBadRequest, err.Error())

		return vapi.Vehicle{}, false
	}

	err = validate(vehicle, requireVIN)
	if err != nil {
		respondErr(writer, http.StatusBadRequest, err.Error())

		return vapi.Vehicle{}, false
	}

	return vehicle, true
}

var (
	errVINRequired           = errors.New("a vin is required")
	errMakeRequired          = errors.New("a make is required")
	errModelRequired         = errors.New("a model is required")
	errYearRequired          = errors.New("a year is required")
	errExteriorColorRequired = errors.New("an exterior_color is required")
	errInteriorColorRequired = errors.New("an interior_color is required")
)

func validate(vehicle vapi.Vehicle, requireVIN bool) error {
	switch {
	case requireVIN && vehicle.VIN == "":
		return errVINRequired
	case vehicle.Make == "":
		return errMakeRequired
	case vehicle.Model == "":
		return errModelRequired
	case vehicle.Year == 0:
		return errYearRequired
	case vehicle.ExteriorColor == "":
		return errExteriorColorRequired
	case vehicle.InteriorColor == "":
		return errInteriorColorRequired
	}

	return nil
}

func respondETag(writer http.ResponseWriter, code int, vehicle vapi.Vehicle) {
	writer.Header().Set(constants.HeaderPragma, constants.PragmaNoCache)
	writer.Header().Set(constants.HeaderExpires, epoch)
	writer.Header().Set(constants.HeaderETag, etag(vehicle))

	respond(writer, code, vehicle)
}

func respondErr(writer http.ResponseWriter, code int, message string) {
	respond(writer, code, ErrorResponse{Message: message})
}

func respond(writer http.ResponseWriter, code int, payload interface{}) {
	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	writer.WriteHeader(code)
	_ = json.NewEncoder(writer).Encode(payload)
}

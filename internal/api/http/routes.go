package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Dashboard is the event surface the routes drive.
type Dashboard interface {
	Search(city string)
	SearchCoordinates(lat, lon float64)
	Type(partial string)
	Hover(lat, lon float64)
	Current() (weather.Snapshot, error)
}

// Board exposes what is on screen.
type Board interface {
	State() display.State
	Version() uint64
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, dash Dashboard, board Board) {
	v1 := app.Group("/api/v1")

	v1.Post("/weather", func(c *fiber.Ctx) error {
		if c.Query("city") != "" {
			q := cityQuery{City: c.Query("city")}
			if err := validate.Struct(q); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			dash.Search(q.City)
			return accepted(c)
		}

		p, err := parsePointQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city or lat and lon query parameters are required: "+err.Error())
		}
		dash.SearchCoordinates(p.Lat, p.Lon)
		return accepted(c)
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		snapshot, err := dash.Current()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather has been rendered yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read current weather")
		}

		return c.JSON(currentResponse{Snapshot: snapshot, PressureMmHg: snapshot.PressureMmHg()})
	})

	// Suggestions are requested for any input, including an empty one.
	v1.Post("/cities/suggest", func(c *fiber.Ctx) error {
		dash.Type(c.Query("q"))
		return accepted(c)
	})

	v1.Post("/map/pointer", func(c *fiber.Ctx) error {
		p, err := parsePointQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		dash.Hover(p.Lat, p.Lon)
		return accepted(c)
	})

	// Clients poll with ?since=<version> and get 304 until the board moves.
	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		if since := c.Query("since"); since != "" {
			v, err := strconv.ParseUint(since, 10, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "since must be a board version")
			}
			if v == board.Version() {
				return c.SendStatus(fiber.StatusNotModified)
			}
		}
		return c.JSON(board.State())
	})
}

// RegisterMetrics exposes gatherer in the Prometheus text format at /metrics.
func RegisterMetrics(app *fiber.App, gatherer prometheus.Gatherer) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

type currentResponse struct {
	weather.Snapshot
	PressureMmHg int `json:"pressureMmHg"`
}

type cityQuery struct {
	City string `validate:"required,max=200"`
}

// pointQuery holds a map position.
type pointQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parsePointQuery(c *fiber.Ctx) (pointQuery, error) {
	var q pointQuery

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, errors.New("invalid lat")
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, errors.New("invalid lon")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func accepted(c *fiber.Ctx) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

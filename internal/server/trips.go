package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/voyagent/voyagent/internal/agent/core"
	"github.com/voyagent/voyagent/internal/store"
)

// TripsHandler exposes the trip planning pipeline over HTTP.
type TripsHandler struct {
	Orchestrator *core.Orchestrator
	Archive      *store.Store
	Cache        *ResultCache
}

func (h *TripsHandler) Register(g *echo.Group) {
	g.POST("", h.plan)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

// plan runs a full pipeline pass for the posted request and returns the
// itinerary with the run's state attached.
func (h *TripsHandler) plan(c echo.Context) error {
	var req core.UserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.Orchestrator.PlanTrip(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.Cache != nil {
		if err := h.Cache.Put(c.Request().Context(), result); err != nil {
			c.Logger().Warnf("caching run %s: %v", result.RunID, err)
		}
	}
	if h.Archive != nil {
		if err := h.Archive.SaveTripRun(c.Request().Context(), result); err != nil {
			c.Logger().Warnf("archiving run %s: %v", result.RunID, err)
		}
	}
	return c.JSON(http.StatusOK, result)
}

// get returns a past run, preferring the cache over the archive.
func (h *TripsHandler) get(c echo.Context) error {
	runID := c.Param("id")
	ctx := c.Request().Context()

	if h.Cache != nil {
		if result, err := h.Cache.Get(ctx, runID); err == nil {
			return c.JSON(http.StatusOK, result)
		}
	}
	if h.Archive != nil {
		result, err := h.Archive.GetTripRun(ctx, runID)
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "trip run not found")
		}
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, result)
	}
	return echo.NewHTTPError(http.StatusNotFound, "trip run not found")
}

// list returns recent archived runs.
func (h *TripsHandler) list(c echo.Context) error {
	if h.Archive == nil {
		return c.JSON(http.StatusOK, []store.TripRunSummary{})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := h.Archive.ListTripRuns(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if runs == nil {
		runs = []store.TripRunSummary{}
	}
	return c.JSON(http.StatusOK, runs)
}

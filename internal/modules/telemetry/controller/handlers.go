package controller

import (
	"errors"
	"net/http"

	"stationwatch/internal/modules/telemetry/repository"
	"stationwatch/internal/modules/telemetry/service"
	"stationwatch/internal/utils"
)

// writeServiceError maps service errors onto status codes.
func (c *telemetryControllerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidComparison):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		c.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (c *telemetryControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *telemetryControllerImpl) handleSensors(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing station id")
		return
	}

	sensors, err := c.service.Sensors(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, sensors)
}

func (c *telemetryControllerImpl) handleSeries(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing station id")
		return
	}

	sensor, err := parseSensor(r, id)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := parseSeriesQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := c.service.Series(r.Context(), sensor, q)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, seriesResponse{
		Sensor:   res.Sensor,
		Readings: res.Readings,
		Outliers: toOutlierResponses(res.Outliers),
	})
}

func (c *telemetryControllerImpl) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	list, err := c.service.ListComparisons(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (c *telemetryControllerImpl) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := c.service.GetComparison(r.Context(), r.PathValue("id"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cmp)
}

func (c *telemetryControllerImpl) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	var req comparisonRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp, err := c.service.CreateComparison(r.Context(), req.Name, req.Sensors)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/comparisons/"+cmp.ID)
	utils.WriteJSON(w, http.StatusCreated, cmp)
}

func (c *telemetryControllerImpl) handleUpdateComparison(w http.ResponseWriter, r *http.Request) {
	var req comparisonRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp, err := c.service.UpdateComparison(r.Context(), r.PathValue("id"), req.Name, req.Sensors)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cmp)
}

func (c *telemetryControllerImpl) handleDeleteComparison(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteComparison(r.Context(), r.PathValue("id")); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *telemetryControllerImpl) handleComparisonSeries(w http.ResponseWriter, r *http.Request) {
	q, err := parseSeriesQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp, res, err := c.service.Compare(r.Context(), r.PathValue("id"), q)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toFanOutResponse(&cmp, res))
}

func (c *telemetryControllerImpl) handleCompare(w http.ResponseWriter, r *http.Request) {
	q, err := parseSeriesQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req compareRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	sensors, err := service.ValidateSensors(req.Sensors)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	res, err := c.service.CompareAdHoc(r.Context(), sensors, q)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toFanOutResponse(nil, res))
}

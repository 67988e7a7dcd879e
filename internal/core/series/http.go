// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/milize/internal/platform/request"
	"github.com/taibuivan/milize/internal/platform/respond"
)

// Handler implements the HTTP layer for series.
type Handler struct {
	service *Service
}

// NewHandler constructs a series [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches series endpoints to the authenticated API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/series/{seriesID}", handler.GetSeries)
	api.Get("/series/{seriesID}/stages", handler.ListStages)
	api.Post("/series/{seriesID}/archive", handler.Archive)
	api.Delete("/series/{seriesID}/archive", handler.Unarchive)
}

// GET /api/v1/series/{seriesID}.
func (handler *Handler) GetSeries(writer http.ResponseWriter, request *http.Request) {
	series, err := handler.service.Get(request.Context(), requestutil.Param(request, "seriesID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, series)
}

// GET /api/v1/series/{seriesID}/stages.
func (handler *Handler) ListStages(writer http.ResponseWriter, request *http.Request) {
	stages, err := handler.service.Stages(request.Context(), requestutil.Param(request, "seriesID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stages)
}

/*
POST /api/v1/series/{seriesID}/archive.

Response:
  - 200: {"chapters_archived": n}
  - 403: FORBIDDEN
  - 404: NOT_FOUND
*/
func (handler *Handler) Archive(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	archived, err := handler.service.Archive(request.Context(), actor, requestutil.Param(request, "seriesID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]int{"chapters_archived": archived})
}

// DELETE /api/v1/series/{seriesID}/archive.
func (handler *Handler) Unarchive(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unarchive(request.Context(), actor, requestutil.Param(request, "seriesID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

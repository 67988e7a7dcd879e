// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/milize/internal/platform/request"
	"github.com/taibuivan/milize/internal/platform/respond"
)

// Handler implements the HTTP layer for work items.
type Handler struct {
	service *Service
}

// NewHandler constructs a work item [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches work item endpoints to the authenticated API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/series/{seriesID}/chapters", handler.ListChapters)
	api.Post("/series/{seriesID}/chapters", handler.CreateChapter)
	api.Get("/chapters/{chapterID}", handler.GetChapter)
	api.Post("/chapters/{chapterID}/archive", handler.ArchiveChapter)
	api.Delete("/chapters/{chapterID}/archive", handler.UnarchiveChapter)
}

// GET /api/v1/series/{seriesID}/chapters.
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	chapters, err := handler.service.ListLive(request.Context(), requestutil.Param(request, "seriesID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapters)
}

type createChapterRequest struct {
	Name      string  `json:"name"`
	DriveLink *string `json:"drive_link"`
}

/*
POST /api/v1/series/{seriesID}/chapters.

Response:
  - 201: Chapter
  - 409: CONFLICT: name already used in the series
  - 422: ARCHIVED, CAP_REACHED
*/
func (handler *Handler) CreateChapter(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createChapterRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.Create(request.Context(), actor, requestutil.Param(request, "seriesID"), input.Name, input.DriveLink)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, chapter)
}

// GET /api/v1/chapters/{chapterID}.
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.Get(request.Context(), requestutil.Param(request, "chapterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// POST /api/v1/chapters/{chapterID}/archive.
func (handler *Handler) ArchiveChapter(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Archive(request.Context(), actor, requestutil.Param(request, "chapterID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// DELETE /api/v1/chapters/{chapterID}/archive.
func (handler *Handler) UnarchiveChapter(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unarchive(request.Context(), actor, requestutil.Param(request, "chapterID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/milize/internal/platform/request"
	"github.com/taibuivan/milize/internal/platform/respond"
)

// Handler implements the HTTP layer for scheduled publications.
type Handler struct {
	service *Service
	wizard  *Wizard
}

// NewHandler constructs a publication [Handler].
func NewHandler(service *Service, wizard *Wizard) *Handler {
	return &Handler{service: service, wizard: wizard}
}

// RegisterRoutes attaches publication endpoints to the authenticated API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/publications", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Schedule)
		r.Delete("/{publicationID}", handler.Cancel)

		r.Post("/drafts", handler.StartDraft)
		r.Get("/drafts/{draftID}", handler.GetDraft)
		r.Patch("/drafts/{draftID}", handler.AdvanceDraft)
		r.Post("/drafts/{draftID}/confirm", handler.ConfirmDraft)
	})
}

// GET /api/v1/publications.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequiredActor(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	publications, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, publications)
}

/*
POST /api/v1/publications.

Request: [Request].

Response:
  - 201: Publication
  - 422: ARCHIVED, POLICY_VIOLATION
*/
func (handler *Handler) Schedule(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Request
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	publication, err := handler.service.Schedule(request.Context(), actor, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, publication)
}

// DELETE /api/v1/publications/{publicationID}.
func (handler *Handler) Cancel(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Cancel(request.Context(), actor, requestutil.Param(request, "publicationID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// POST /api/v1/publications/drafts.
func (handler *Handler) StartDraft(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	draft, err := handler.wizard.Start(request.Context(), actor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, draft)
}

// GET /api/v1/publications/drafts/{draftID}.
func (handler *Handler) GetDraft(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	draft, err := handler.wizard.Get(request.Context(), actor, requestutil.Param(request, "draftID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, draft)
}

// PATCH /api/v1/publications/drafts/{draftID} answers the current step.
func (handler *Handler) AdvanceDraft(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input DraftInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	draft, err := handler.wizard.Advance(request.Context(), actor, requestutil.Param(request, "draftID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, draft)
}

// POST /api/v1/publications/drafts/{draftID}/confirm.
func (handler *Handler) ConfirmDraft(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	publication, err := handler.wizard.Confirm(request.Context(), actor, requestutil.Param(request, "draftID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, publication)
}

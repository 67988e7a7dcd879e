// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package board

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/milize/internal/core/roster"
	requestutil "github.com/taibuivan/milize/internal/platform/request"
	"github.com/taibuivan/milize/internal/platform/respond"
)

// Handler implements the HTTP layer for the claim board.
type Handler struct {
	service *Service
}

// NewHandler constructs a claim-board [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches board endpoints to the authenticated API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Post("/chapters/{chapterID}/stages/{stageID}/posting", handler.Post)
	api.Delete("/chapters/{chapterID}/stages/{stageID}/posting", handler.Remove)
	api.Post("/board/messages/{messageID}/claim", handler.Claim)
}

type postRequest struct {
	MinTier roster.Tier `json:"min_tier"`
}

/*
POST /api/v1/chapters/{chapterID}/stages/{stageID}/posting.

Request:
  - min_tier: 0 (trial), 1 (probationary) or 2 (full)

Response:
  - 201: Posting
  - 409: ALREADY_CLAIMED, ALREADY_POSTED
  - 422: ARCHIVED, POLICY_VIOLATION
*/
func (handler *Handler) Post(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input postRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	posting, err := handler.service.Post(request.Context(), actor,
		requestutil.Param(request, "chapterID"), requestutil.Param(request, "stageID"), input.MinTier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, posting)
}

// DELETE /api/v1/chapters/{chapterID}/stages/{stageID}/posting.
func (handler *Handler) Remove(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Remove(request.Context(), actor,
		requestutil.Param(request, "chapterID"), requestutil.Param(request, "stageID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /api/v1/board/messages/{messageID}/claim.

Response:
  - 201: ClaimResult
  - 204: the posting was already taken
  - 422: TIER_TOO_LOW
*/
func (handler *Handler) Claim(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.ClaimViaBoard(request.Context(), actor, requestutil.Param(request, "messageID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if result == nil {
		respond.NoContent(writer)
		return
	}
	respond.Created(writer, result)
}

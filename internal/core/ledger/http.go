// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/platform/apperr"
	requestutil "github.com/taibuivan/milize/internal/platform/request"
	"github.com/taibuivan/milize/internal/platform/respond"
	"github.com/taibuivan/milize/internal/platform/validate"
)

// Handler implements the HTTP layer for the assignment ledger.
type Handler struct {
	service *Service
}

// NewHandler constructs a ledger [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches ledger endpoints to the authenticated API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/members/me/assignments", handler.ListMine)
	api.Get("/chapters/{chapterID}/progress", handler.GetProgress)

	api.Route("/chapters/{chapterID}/stages/{stageID}", func(stage chi.Router) {
		stage.Post("/claim", handler.Claim)
		stage.Delete("/claim", handler.Unclaim)
		stage.Get("/assignment", handler.GetAssignment)
		stage.Post("/assignment", handler.Assign)
		stage.Put("/assignment", handler.Reassign)
		stage.Delete("/assignment", handler.Unassign)
		stage.Patch("/assignment/status", handler.UpdateStatus)
	})
}

func pair(request *http.Request) (string, string) {
	return requestutil.Param(request, "chapterID"), requestutil.Param(request, "stageID")
}

/*
POST /api/v1/chapters/{chapterID}/stages/{stageID}/claim.

Response:
  - 201: ClaimResult
  - 409: ALREADY_CLAIMED
  - 422: ARCHIVED
*/
func (handler *Handler) Claim(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapterID, stageID := pair(request)
	result, err := handler.service.Claim(request.Context(), actor, chapterID, stageID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

// DELETE /api/v1/chapters/{chapterID}/stages/{stageID}/claim.
func (handler *Handler) Unclaim(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapterID, stageID := pair(request)
	if err := handler.service.Unclaim(request.Context(), actor, chapterID, stageID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// GET /api/v1/chapters/{chapterID}/stages/{stageID}/assignment.
func (handler *Handler) GetAssignment(writer http.ResponseWriter, request *http.Request) {
	chapterID, stageID := pair(request)
	assignment, err := handler.service.Get(request.Context(), chapterID, stageID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, assignment)
}

type assigneeRequest struct {
	Assignee string `json:"assignee"`
}

func decodeAssignee(writer http.ResponseWriter, request *http.Request) (string, error) {
	var input assigneeRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		return "", err
	}

	validator := &validate.Validator{}
	validator.Snowflake("assignee", input.Assignee)
	return input.Assignee, validator.Err()
}

// POST /api/v1/chapters/{chapterID}/stages/{stageID}/assignment.
func (handler *Handler) Assign(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignee, err := decodeAssignee(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapterID, stageID := pair(request)
	result, err := handler.service.Assign(request.Context(), actor, chapterID, stageID, assignee)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

// PUT /api/v1/chapters/{chapterID}/stages/{stageID}/assignment.
func (handler *Handler) Reassign(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignee, err := decodeAssignee(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapterID, stageID := pair(request)
	assignment, err := handler.service.Reassign(request.Context(), actor, chapterID, stageID, assignee)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, assignment)
}

// DELETE /api/v1/chapters/{chapterID}/stages/{stageID}/assignment.
func (handler *Handler) Unassign(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapterID, stageID := pair(request)
	if err := handler.service.Unassign(request.Context(), actor, chapterID, stageID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

type statusRequest struct {
	Status string `json:"status"`
}

/*
PATCH /api/v1/chapters/{chapterID}/stages/{stageID}/assignment/status.

Request:
  - status: "backlog", "in_progress" or "completed"

Response:
  - 200: Assignment
  - 422: PREREQUISITE_NOT_MET, POLICY_VIOLATION
*/
func (handler *Handler) UpdateStatus(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input statusRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	status, err := ParseStatus(input.Status)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid status",
			apperr.FieldError{Field: "status", Message: "Must be one of backlog, in_progress, completed"}))
		return
	}

	chapterID, stageID := pair(request)
	assignment, err := handler.service.UpdateStatus(request.Context(), actor, chapterID, stageID, status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, assignment)
}

// GET /api/v1/members/me/assignments.
func (handler *Handler) ListMine(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignments, err := handler.service.ListOpen(request.Context(), actor.DiscordID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, assignments)
}

type stageProgress struct {
	SeriesJobID string      `json:"series_job_id"`
	Name        string      `json:"name"`
	Type        string      `json:"stage_type"`
	Ready       bool        `json:"ready"`
	Assignment  *Assignment `json:"assignment,omitempty"`
}

// GET /api/v1/chapters/{chapterID}/progress.
func (handler *Handler) GetProgress(writer http.ResponseWriter, request *http.Request) {
	progress, err := handler.service.Progress(request.Context(), requestutil.Param(request, "chapterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stages := make([]stageProgress, 0, len(progress.Stages))
	for _, stage := range progress.Stages {
		entry := stageProgress{
			SeriesJobID: stage.ID,
			Name:        stage.Name,
			Type:        stage.Type.String(),
			Ready:       pipeline.Ready(stage.Type, progress.Snapshot),
		}
		for _, assignment := range progress.Assignments {
			if assignment.SeriesJobID == stage.ID {
				entry.Assignment = assignment
			}
		}
		stages = append(stages, entry)
	}

	respond.OK(writer, map[string]any{
		"chapter": progress.Chapter,
		"stages":  stages,
	})
}

// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/milize/internal/platform/request"
	"github.com/taibuivan/milize/internal/platform/respond"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/pkg/pagination"
)

// Handler implements the HTTP layer for the roster.
type Handler struct {
	service *Service
}

// NewHandler constructs a roster [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches roster endpoints to the authenticated API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/members", handler.ListMembers)
	api.Post("/members", handler.AddMember)
	api.Patch("/members/me/preferences", handler.UpdatePreferences)
	api.Post("/members/me/subscriptions/{seriesID}", handler.Subscribe)
	api.Delete("/members/me/subscriptions/{seriesID}", handler.Unsubscribe)
	api.Get("/members/{discordID}", handler.GetMember)
	api.Post("/members/{discordID}/restore", handler.Restore)
}

// GET /api/v1/members.
func (handler *Handler) ListMembers(writer http.ResponseWriter, request *http.Request) {
	members, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	respond.Paginated(writer, pagination.Window(members, params), pagination.NewMeta(params, len(members)))
}

type addMemberRequest struct {
	DiscordID  string  `json:"discord_id"`
	CreditName *string `json:"credit_name"`
	Authority  string  `json:"authority"`
}

/*
POST /api/v1/members.

Response:
  - 201: Member
  - 403: FORBIDDEN
  - 409: CONFLICT: member exists
*/
func (handler *Handler) AddMember(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addMemberRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	authority := sec.AuthorityMember
	if input.Authority != "" {
		if authority, err = sec.ParseAuthority(input.Authority); err != nil {
			authority = -1
		}
	}

	member, err := handler.service.Add(request.Context(), actor, input.DiscordID, input.CreditName, authority)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, member)
}

// GET /api/v1/members/{discordID}.
func (handler *Handler) GetMember(writer http.ResponseWriter, request *http.Request) {
	member, err := handler.service.Get(request.Context(), requestutil.Param(request, "discordID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, member)
}

/*
POST /api/v1/members/{discordID}/restore.

Description: Moves a retired collaborator back to the roster and hands
back their snapshotted roles.
*/
func (handler *Handler) Restore(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.Restore(request.Context(), actor, requestutil.Param(request, "discordID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, member)
}

// PATCH /api/v1/members/me/preferences.
func (handler *Handler) UpdatePreferences(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var prefs Preferences
	if err := requestutil.DecodeJSON(writer, request, &prefs); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdatePreferences(request.Context(), actor, prefs); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// POST /api/v1/members/me/subscriptions/{seriesID}.
func (handler *Handler) Subscribe(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Subscribe(request.Context(), actor, requestutil.Param(request, "seriesID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// DELETE /api/v1/members/me/subscriptions/{seriesID}.
func (handler *Handler) Unsubscribe(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unsubscribe(request.Context(), actor, requestutil.Param(request, "seriesID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"biliticket/admission/internal/service"
	"biliticket/admission/pkg/response"
)

type TeamHandler struct {
	teamService service.TeamService
	logger      *zap.Logger
}

func NewTeamHandler(teamService service.TeamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teamService: teamService, logger: logger}
}

type CreateTeamRequest struct {
	EventID string `json:"eventId" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

type JoinTeamRequest struct {
	Code string `json:"code" binding:"required"`
}

// RemoveTeamRequest selects between leaving (default) and deleting a team.
type RemoveTeamRequest struct {
	Action string `json:"action"`
}

func (h *TeamHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), req.EventID, p.Email, req.Name)
	if err != nil {
		writeServiceError(c, h.logger, err, "create team")
		return
	}
	response.Created(c, team)
}

func (h *TeamHandler) Join(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	team, err := h.teamService.JoinTeam(c.Request.Context(), req.Code, p.Email)
	if err != nil {
		writeServiceError(c, h.logger, err, "join team")
		return
	}
	response.Success(c, team)
}

// Remove leaves the team, or deletes it when action is "delete".
func (h *TeamHandler) Remove(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	// An empty body means leave. Content-Length is not consulted: chunked
	// bodies report -1.
	var req RemoveTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "", "leave":
		err = h.teamService.LeaveTeam(c.Request.Context(), teamID, p.Email)
	case "delete":
		err = h.teamService.DeleteTeam(c.Request.Context(), teamID, p.Email)
	default:
		response.BadRequest(c, "action must be \"leave\" or \"delete\"")
		return
	}
	if err != nil {
		writeServiceError(c, h.logger, err, "remove team")
		return
	}
	response.Success(c, nil)
}

// Mine returns the caller's team for an event, or null.
func (h *TeamHandler) Mine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	team, err := h.teamService.GetTeamForUser(c.Request.Context(), c.Query("eventId"), p.Email)
	if err != nil {
		writeServiceError(c, h.logger, err, "get team")
		return
	}
	if team == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, team)
}

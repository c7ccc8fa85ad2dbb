package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

type TeamHandler struct {
	team interfaces.TeamService
}

func NewTeamHandler(team interfaces.TeamService) *TeamHandler {
	return &TeamHandler{
		team: team,
	}
}

// ---- roles ----

func (h *TeamHandler) ListRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.ListRoles")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		roles, err := h.team.ListRoles(ctx, c.Param("companyId"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, roles)
	}
}

func (h *TeamHandler) CreateRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.CreateRole")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.CreateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		role, err := h.team.CreateRole(ctx, c.Param("companyId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondCreated(c, role)
	}
}

func (h *TeamHandler) UpdateRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.UpdateRole")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		tracing.TagEntity(span, c.Param("roleId"))

		var req dto.UpdateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		role, err := h.team.UpdateRole(ctx, c.Param("companyId"), c.Param("roleId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, role)
	}
}

func (h *TeamHandler) DeleteRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.DeleteRole")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		roleId := c.Param("roleId")
		tracing.TagEntity(span, roleId)

		if err := h.team.DeleteRole(ctx, c.Param("companyId"), roleId); err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, gin.H{"id": roleId})
	}
}

// ---- members ----

func (h *TeamHandler) ListMembers() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.ListMembers")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		members, err := h.team.ListMembers(ctx, c.Param("companyId"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, members)
	}
}

func (h *TeamHandler) AddMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.AddMember")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.AddMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		member, err := h.team.AddMember(ctx, c.Param("companyId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondCreated(c, member)
	}
}

func (h *TeamHandler) UpdateMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.UpdateMember")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		tracing.TagEntity(span, c.Param("memberId"))

		var req dto.UpdateMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		member, err := h.team.UpdateMember(ctx, c.Param("companyId"), c.Param("memberId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, member)
	}
}

func (h *TeamHandler) RemoveMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.RemoveMember")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		memberId := c.Param("memberId")
		tracing.TagEntity(span, memberId)

		if err := h.team.RemoveMember(ctx, c.Param("companyId"), memberId); err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, gin.H{"id": memberId})
	}
}

// ---- invitations ----

func (h *TeamHandler) ListInvitations() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.ListInvitations")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		invitations, err := h.team.ListInvitations(ctx, c.Param("companyId"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, invitations)
	}
}

func (h *TeamHandler) CreateInvitation() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.CreateInvitation")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.CreateInvitationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		invitation, err := h.team.CreateInvitation(ctx, c.Param("companyId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondCreated(c, invitation)
	}
}

func (h *TeamHandler) RevokeInvitation() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.RevokeInvitation")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		invitationId := c.Param("invitationId")
		tracing.TagEntity(span, invitationId)

		if err := h.team.RevokeInvitation(ctx, c.Param("companyId"), invitationId); err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, gin.H{"id": invitationId})
	}
}

// AcceptInvitation is keyed by token only; the company comes from the invitation itself
func (h *TeamHandler) AcceptInvitation() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TeamHandler.AcceptInvitation")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.AcceptInvitationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		member, err := h.team.AcceptInvitation(ctx, c.Param("token"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, member)
	}
}

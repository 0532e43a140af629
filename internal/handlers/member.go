package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type AddMemberRequest struct {
	UserID         uint   `json:"user_id" binding:"required"`
	Role           string `json:"role" binding:"required"`
	CanEditTasks   bool   `json:"can_edit_tasks"`
	CanInviteUsers bool   `json:"can_invite_users"`
}

func ListMembers(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	members, err := memberships().ListMembers(projectID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.MemberResponse, 0, len(members))

	for i := range members {
		m := &members[i]
		response = append(response, types.MemberResponse{
			UserID:         m.UserID,
			Name:           m.User.Name,
			Email:          m.User.Email,
			Role:           m.Role,
			CanEditTasks:   m.CanEditTasks,
			CanInviteUsers: m.CanInviteUsers,
			JoinedAt:       m.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func AddMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req AddMemberRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	membership, err := memberships().AddMember(projectID, userID, req.UserID, req.Role, req.CanEditTasks, req.CanInviteUsers)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.MemberResponse{
		UserID:         membership.UserID,
		Name:           membership.User.Name,
		Email:          membership.User.Email,
		Role:           membership.Role,
		CanEditTasks:   membership.CanEditTasks,
		CanInviteUsers: membership.CanInviteUsers,
		JoinedAt:       membership.CreatedAt,
	})
}

func RemoveMember(ctx *gin.Context) {
	actingUserID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID, err := utils.GetUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := memberships().RemoveMember(projectID, actingUserID, memberID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListInviteCandidates(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates, err := memberships().InviteCandidates(projectID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.UserResponse, 0, len(candidates))

	for i := range candidates {
		response = append(response, userResponse(&candidates[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

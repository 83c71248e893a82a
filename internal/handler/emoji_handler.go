package handler

import (
	"errors"
	"net/http"

	"github.com/damoang/emoji-backend/internal/common"
	"github.com/damoang/emoji-backend/internal/middleware"
	"github.com/damoang/emoji-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// EmojiHandler handles emoji group HTTP requests
type EmojiHandler struct {
	groupService service.EmojiGroupService
}

// NewEmojiHandler creates a new EmojiHandler
func NewEmojiHandler(groupService service.EmojiGroupService) *EmojiHandler {
	return &EmojiHandler{groupService: groupService}
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
	Sort int    `json:"sort"`
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

type sortRequest struct {
	Sort int `json:"sort"`
}

type batchSortRequest struct {
	IDs   []string `json:"ids" binding:"required"`
	Sorts []int    `json:"sorts" binding:"required"`
}

type addEmojiRequest struct {
	EmojiID string `json:"emoji_id" binding:"required"`
	Sort    int    `json:"sort"`
	Name    string `json:"name"`
}

type addEmojiByURLRequest struct {
	URL  string `json:"url" binding:"required"`
	Sort int    `json:"sort"`
	Name string `json:"name"`
}

// ListGroups handles GET /emoji/groups
// @Summary List the user's emoji groups
// @Tags emoji
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=[]domain.EmojiGroupResponse}
// @Router /emoji/groups [get]
func (h *EmojiHandler) ListGroups(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	groups, err := h.groupService.ListGroups(c.Request.Context(), userID)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, groups, nil)
}

// ListGroupEmojis handles GET /emoji/groups/:group_id/emojis
// @Summary List the emojis in a group
// @Tags emoji
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Success 200 {object} common.APIResponse{data=[]domain.EmojiResponse}
// @Router /emoji/groups/{group_id}/emojis [get]
func (h *EmojiHandler) ListGroupEmojis(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	groupID := c.Param("group_id")
	emojis, err := h.groupService.ListGroupEmojis(c.Request.Context(), userID, groupID)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, emojis, &common.Meta{GroupID: groupID, Total: int64(len(emojis))})
}

// CreateGroup handles POST /emoji/groups
// @Summary Create a custom emoji group
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createGroupRequest true "group name and sort"
// @Success 200 {object} common.APIResponse{data=domain.EmojiGroupResponse}
// @Router /emoji/groups [post]
func (h *EmojiHandler) CreateGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "group name is required", err)
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), userID, req.Name, req.Sort)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, group, nil)
}

// RenameGroup handles PUT /emoji/groups/:group_id/name
// @Summary Rename a custom emoji group
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param request body renameRequest true "new name"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/name [put]
func (h *EmojiHandler) RenameGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "name is required", err)
		return
	}

	if err := h.groupService.RenameGroup(c.Request.Context(), userID, c.Param("group_id"), req.Name); err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}

// UpdateGroupSort handles PUT /emoji/groups/:group_id/sort
// @Summary Reorder a custom emoji group
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param request body sortRequest true "new sort"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/sort [put]
func (h *EmojiHandler) UpdateGroupSort(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.groupService.UpdateGroupSort(c.Request.Context(), userID, c.Param("group_id"), req.Sort); err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}

// BatchUpdateGroupSort handles PUT /emoji/groups/sort
// @Summary Reorder several emoji groups at once
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body batchSortRequest true "group ids and sorts, same length"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/sort [put]
func (h *EmojiHandler) BatchUpdateGroupSort(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req batchSortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "ids and sorts are required", err)
		return
	}
	if len(req.IDs) != len(req.Sorts) {
		common.ErrorResponse(c, http.StatusBadRequest, "ids and sorts must have the same length", nil)
		return
	}

	if err := h.groupService.BatchUpdateGroupSort(c.Request.Context(), userID, req.IDs, req.Sorts); err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}

// DeleteGroup handles DELETE /emoji/groups/:group_id
// @Summary Delete a custom emoji group
// @Tags emoji
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id} [delete]
func (h *EmojiHandler) DeleteGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	if err := h.groupService.DeleteGroup(c.Request.Context(), userID, c.Param("group_id")); err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// AddEmojiToGroup handles POST /emoji/groups/:group_id/emojis
// @Summary Add an existing emoji to a group
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param request body addEmojiRequest true "emoji id, sort and display name"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/emojis [post]
func (h *EmojiHandler) AddEmojiToGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req addEmojiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "emoji_id is required", err)
		return
	}

	err := h.groupService.AddEmojiToGroup(c.Request.Context(), userID, c.Param("group_id"), req.EmojiID, req.Sort, req.Name)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"added": true}, nil)
}

// AddEmojiByURL handles POST /emoji/groups/:group_id/emojis/url
// @Summary Add an emoji to a group by image URL
// @Description Reuses the existing emoji record if the URL was added before
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param request body addEmojiByURLRequest true "image url, sort and display name"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/emojis/url [post]
func (h *EmojiHandler) AddEmojiByURL(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req addEmojiByURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "url is required", err)
		return
	}

	emoji, err := h.groupService.AddEmojiByURL(c.Request.Context(), userID, c.Param("group_id"), req.URL, req.Sort, req.Name)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"emoji_id": emoji.ID, "url": emoji.URL}, nil)
}

// RemoveEmojiFromGroup handles DELETE /emoji/groups/:group_id/emojis/:emoji_id
// @Summary Remove an emoji from a group
// @Description Removing from the "all" group removes the emoji from every group
// @Tags emoji
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param emoji_id path string true "emoji ID"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/emojis/{emoji_id} [delete]
func (h *EmojiHandler) RemoveEmojiFromGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	err := h.groupService.RemoveEmojiFromGroup(c.Request.Context(), userID, c.Param("group_id"), c.Param("emoji_id"))
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"removed": true}, nil)
}

// RenameEmojiInGroup handles PUT /emoji/groups/:group_id/emojis/:emoji_id/name
// @Summary Rename an emoji within a group
// @Description Display names are group-local; other groups are unaffected
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param emoji_id path string true "emoji ID"
// @Param request body renameRequest true "new display name"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/emojis/{emoji_id}/name [put]
func (h *EmojiHandler) RenameEmojiInGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "name is required", err)
		return
	}

	err := h.groupService.RenameEmojiInGroup(c.Request.Context(), userID, c.Param("group_id"), c.Param("emoji_id"), req.Name)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}

// UpdateEmojiSort handles PUT /emoji/groups/:group_id/emojis/:emoji_id/sort
// @Summary Reorder an emoji within a group
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param emoji_id path string true "emoji ID"
// @Param request body sortRequest true "new sort"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/emojis/{emoji_id}/sort [put]
func (h *EmojiHandler) UpdateEmojiSort(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := h.groupService.UpdateEmojiSort(c.Request.Context(), userID, c.Param("group_id"), c.Param("emoji_id"), req.Sort)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}

// BatchUpdateEmojiSort handles PUT /emoji/groups/:group_id/emojis/sort
// @Summary Reorder several emojis within a group at once
// @Tags emoji
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group_id path string true "group ID"
// @Param request body batchSortRequest true "emoji ids and sorts, same length"
// @Success 200 {object} common.APIResponse
// @Router /emoji/groups/{group_id}/emojis/sort [put]
func (h *EmojiHandler) BatchUpdateEmojiSort(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return
	}

	var req batchSortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "ids and sorts are required", err)
		return
	}
	if len(req.IDs) != len(req.Sorts) {
		common.ErrorResponse(c, http.StatusBadRequest, "ids and sorts must have the same length", nil)
		return
	}

	err := h.groupService.BatchUpdateEmojiSort(c.Request.Context(), userID, c.Param("group_id"), req.IDs, req.Sorts)
	if err != nil {
		handleEmojiError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}

// handleEmojiError maps service errors to HTTP status codes
func handleEmojiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrGroupNotFound),
		errors.Is(err, common.ErrEmojiNotFound),
		errors.Is(err, common.ErrEmojiNotInGroup):
		common.ErrorResponse(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, common.ErrImmutableGroup):
		common.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, common.ErrGroupNameExists):
		common.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "internal server error", err)
	}
}

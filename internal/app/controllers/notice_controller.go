package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// NoticeController handles the notice board
type NoticeController struct {
	noticeService services.NoticeService
}

// NewNoticeController creates a new NoticeController
func NewNoticeController(noticeService services.NoticeService) *NoticeController {
	return &NoticeController{noticeService: noticeService}
}

// CreateNotice posts a notice; active notices are pushed to connected clients
// @Summary Create notice
// @Description Omit campusId to post to your own campus. Only SUPER_ADMIN may post global notices.
// @Tags notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NoticeRequest true "Notice"
// @Success 201 {object} dto.APIResponse{data=models.Notice}
// @Failure 400 {object} dto.ErrorResponse "Invalid audience or expiry"
// @Failure 403 {object} dto.ErrorResponse "Campus outside the caller's scope"
// @Router /notices [post]
func (c *NoticeController) CreateNotice(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.NoticeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	notice, err := c.noticeService.CreateNotice(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(notice, "Notice created"))
}

// GetNotice retrieves a notice
// @Summary Get notice
// @Tags notices
// @Produce json
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse{data=models.Notice}
// @Failure 404 {object} dto.ErrorResponse "Notice not found"
// @Router /notices/{id} [get]
func (c *NoticeController) GetNotice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Notice")
	if !ok {
		return
	}

	notice, err := c.noticeService.GetNotice(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notice, ""))
}

// ListNotices lists every notice in the caller's scope, including scheduled and expired ones
// @Summary List notices (management)
// @Tags notices
// @Produce json
// @Security BearerAuth
// @Param campusId query int false "Filter by campus (SUPER_ADMIN)"
// @Param audience query string false "ALL, STAFF or STUDENTS"
// @Param search query string false "Match title"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Notice}
// @Router /notices [get]
func (c *NoticeController) ListNotices(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	filter := dto.NoticeFilter{
		CampusID: campusID,
		Audience: queryEnum[models.NoticeAudience](ctx, "audience"),
		Search:   queryString(ctx, "search"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	notices, total, err := c.noticeService.ListNotices(ctx.Request.Context(), actor, filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, notices, total, page, size)
}

// ListActiveNotices is the public notice board: published, unexpired notices plus global ones
// @Summary Active notices
// @Tags notices
// @Produce json
// @Param campusId query int false "Campus to show; global notices are always included"
// @Param audience query string false "ALL, STAFF or STUDENTS"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Notice}
// @Router /notices/active [get]
func (c *NoticeController) ListActiveNotices(ctx *gin.Context) {
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	filter := dto.NoticeFilter{
		CampusID: campusID,
		Audience: queryEnum[models.NoticeAudience](ctx, "audience"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	notices, total, err := c.noticeService.ListActiveNotices(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, notices, total, page, size)
}

// UpdateNotice edits a notice
// @Summary Update notice
// @Tags notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Param request body dto.NoticeRequest true "Notice"
// @Success 200 {object} dto.APIResponse{data=models.Notice}
// @Failure 403 {object} dto.ErrorResponse "Global notices are SUPER_ADMIN only"
// @Router /notices/{id} [put]
func (c *NoticeController) UpdateNotice(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Notice")
	if !ok {
		return
	}
	var req dto.NoticeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	notice, err := c.noticeService.UpdateNotice(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notice, "Notice updated"))
}

// DeleteNotice removes a notice
// @Summary Delete notice
// @Tags notices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Global notices are SUPER_ADMIN only"
// @Router /notices/{id} [delete]
func (c *NoticeController) DeleteNotice(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Notice")
	if !ok {
		return
	}

	if err := c.noticeService.DeleteNotice(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notice deleted"))
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fets-ops/console-api/internal/service"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/response"
)

// WallHandler exposes the social wall endpoints.
type WallHandler struct {
	wall *service.WallService
}

// NewWallHandler constructs WallHandler.
func NewWallHandler(wall *service.WallService) *WallHandler {
	return &WallHandler{wall: wall}
}

// Feed godoc
// @Summary Wall feed
// @Description Recent posts with like and comment counts, newest first
// @Tags Wall
// @Produce json
// @Param limit query int false "Max posts"
// @Success 200 {object} response.Envelope
// @Router /wall [get]
func (h *WallHandler) Feed(c *gin.Context) {
	claims := claimsFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	posts, err := h.wall.Feed(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// CreatePost godoc
// @Summary Create a wall post
// @Tags Wall
// @Accept json
// @Produce json
// @Param payload body map[string]string true "Post content"
// @Success 201 {object} response.Envelope
// @Router /wall [post]
func (h *WallHandler) CreatePost(c *gin.Context) {
	var payload struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "content required"))
		return
	}
	claims := claimsFromContext(c)
	post, err := h.wall.CreatePost(c.Request.Context(), claims.UserID, payload.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// DeletePost godoc
// @Summary Delete a wall post
// @Description Authors may delete their own posts; admins may delete any post
// @Tags Wall
// @Produce json
// @Param id path string true "Post ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /wall/{id} [delete]
func (h *WallHandler) DeletePost(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.wall.DeletePost(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Comments godoc
// @Summary List comments on a post
// @Tags Wall
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /wall/{id}/comments [get]
func (h *WallHandler) Comments(c *gin.Context) {
	comments, err := h.wall.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments, nil)
}

// AddComment godoc
// @Summary Comment on a post
// @Tags Wall
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body map[string]string true "Comment content"
// @Success 201 {object} response.Envelope
// @Router /wall/{id}/comments [post]
func (h *WallHandler) AddComment(c *gin.Context) {
	var payload struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "content required"))
		return
	}
	claims := claimsFromContext(c)
	comment, err := h.wall.AddComment(c.Request.Context(), c.Param("id"), claims.UserID, payload.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// Like godoc
// @Summary Like a post
// @Tags Wall
// @Produce json
// @Param id path string true "Post ID"
// @Success 204 {object} response.Envelope
// @Router /wall/{id}/like [post]
func (h *WallHandler) Like(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.wall.Like(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Unlike godoc
// @Summary Remove a like
// @Tags Wall
// @Produce json
// @Param id path string true "Post ID"
// @Success 204 {object} response.Envelope
// @Router /wall/{id}/like [delete]
func (h *WallHandler) Unlike(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.wall.Unlike(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

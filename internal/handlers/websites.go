package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/podelme/podel/internal/middleware"
	"github.com/podelme/podel/internal/models"
	"github.com/podelme/podel/internal/services"
	appErrors "github.com/podelme/podel/pkg/errors"
	"github.com/podelme/podel/pkg/response"
	appValidator "github.com/podelme/podel/pkg/validator"
)

// WebsiteHandler exposes reviewable website subjects and their comments.
type WebsiteHandler struct {
	websites *services.WebsiteService
	comments *services.CommentService
}

func NewWebsiteHandler(websites *services.WebsiteService, comments *services.CommentService) *WebsiteHandler {
	return &WebsiteHandler{websites: websites, comments: comments}
}

type createWebsiteRequest struct {
	Name        string `form:"name" json:"name" validate:"required,max=128"`
	DomainName  string `form:"domain_name" json:"domain_name" validate:"required,max=255"`
	Description string `form:"description" json:"description" validate:"max=2048"`
}

// POST /websites (admin only)
func (h *WebsiteHandler) Create(c *gin.Context) {
	var req createWebsiteRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid website payload"))
		return
	}
	if err := appValidator.ValidateStruct(&req); err != nil {
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}

	website, err := h.websites.Create(c.Request.Context(), services.CreateWebsiteInput{
		Name:        req.Name,
		DomainName:  req.DomainName,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "create website"))
		return
	}

	response.Success(c, http.StatusCreated, website)
}

// GET /websites/:id
//
// Resolves by id or unique name and includes the newest page of comments.
func (h *WebsiteHandler) Get(c *gin.Context) {
	website, err := h.websites.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrWebsiteNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.Wrap(err, "load website"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	comments, err := h.comments.List(c.Request.Context(), models.ParentWebsite, website.ID, limit, offset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "load comments"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"website":  website,
		"comments": comments,
	})
}

type voteRequest struct {
	Up bool `form:"up" json:"up"`
}

// POST /websites/:id/vote
func (h *WebsiteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid vote payload"))
		return
	}

	if err := h.websites.Vote(c.Request.Context(), c.Param("id"), req.Up); err != nil {
		if errors.Is(err, services.ErrWebsiteNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.Wrap(err, "vote"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"voted": true})
}

type createCommentRequest struct {
	Text string `form:"text" json:"text" validate:"required,max=4096"`
}

// POST /websites/:id/comments
func (h *WebsiteHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid comment payload"))
		return
	}
	if err := appValidator.ValidateStruct(&req); err != nil {
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}

	website, err := h.websites.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrWebsiteNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.Wrap(err, "load website"))
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), models.ParentWebsite, website.ID, user.ID, req.Text)
	if err != nil {
		if errors.Is(err, services.ErrParentNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.Wrap(err, "create comment"))
		return
	}

	response.Success(c, http.StatusCreated, comment)
}

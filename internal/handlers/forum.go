package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agrifarma/platform/internal/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ForumHandler struct {
	DB *gorm.DB
}

type forumPostView struct {
	models.ForumPost
	ReplyCount int64 `json:"reply_count"`
	LikeCount  int64 `json:"like_count"`
}

func (h *ForumHandler) postView(p models.ForumPost) forumPostView {
	var replies, likes int64
	h.DB.Model(&models.ForumReply{}).Where("post_id = ?", p.ID).Count(&replies)
	h.DB.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likes)
	return forumPostView{ForumPost: p, ReplyCount: replies, LikeCount: likes}
}

func (h *ForumHandler) GetPosts(c echo.Context) error {
	query := h.DB.Model(&models.ForumPost{})
	if q := c.QueryParam("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var posts []models.ForumPost
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	views := make([]forumPostView, len(posts))
	for i, p := range posts {
		views[i] = h.postView(p)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *ForumHandler) GetPost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var post models.ForumPost
	if err := h.DB.First(&post, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "post not found"})
	}

	var replies []models.ForumReply
	if err := h.DB.Where("post_id = ?", post.ID).Order("created_at ASC").Find(&replies).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"post":    h.postView(post),
		"replies": replies,
	})
}

func (h *ForumHandler) CreatePost(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if req.Title == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and content required")
	}

	post := models.ForumPost{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
		UserID:  userID,
	}
	if err := h.DB.Create(&post).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *ForumHandler) CreateReply(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var post models.ForumPost
	if err := h.DB.First(&post, postID).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "post not found"})
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content required")
	}

	reply := models.ForumReply{
		Content: req.Content,
		UserID:  userID,
		PostID:  post.ID,
	}
	if err := h.DB.Create(&reply).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, reply)
}

// LikePost toggles the caller's like on a post.
func (h *ForumHandler) LikePost(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	postID64, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	postID := uint(postID64)

	var post models.ForumPost
	if err := h.DB.First(&post, postID).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "post not found"})
	}

	var like models.Like
	res := h.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&like)
	switch {
	case res.Error == nil:
		if err := h.DB.Delete(&like).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, err)
		}
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		if err := h.DB.Create(&models.Like{UserID: userID, PostID: &postID}).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, err)
		}
	default:
		return c.JSON(http.StatusInternalServerError, res.Error)
	}

	var count int64
	h.DB.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count)
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// LikeReply toggles the caller's like on a reply.
func (h *ForumHandler) LikeReply(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	replyID64, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	replyID := uint(replyID64)

	var reply models.ForumReply
	if err := h.DB.First(&reply, replyID).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "reply not found"})
	}

	var like models.Like
	res := h.DB.Where("user_id = ? AND reply_id = ?", userID, replyID).First(&like)
	switch {
	case res.Error == nil:
		if err := h.DB.Delete(&like).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, err)
		}
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		if err := h.DB.Create(&models.Like{UserID: userID, ReplyID: &replyID}).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, err)
		}
	default:
		return c.JSON(http.StatusInternalServerError, res.Error)
	}

	var count int64
	h.DB.Model(&models.Like{}).Where("reply_id = ?", replyID).Count(&count)
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *ForumHandler) DeletePost(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var post models.ForumPost
	if err := h.DB.First(&post, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, err)
	}
	if post.UserID != userID && actorRole(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not your post")
	}

	if err := h.DB.Where("post_id = ?", post.ID).Delete(&models.ForumReply{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	if err := h.DB.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	if err := h.DB.Delete(&post).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

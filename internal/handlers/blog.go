package handlers

import (
	"net/http"
	"strconv"

	"github.com/agrifarma/platform/internal/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type BlogHandler struct {
	DB *gorm.DB
}

func (h *BlogHandler) GetBlogs(c echo.Context) error {
	var blogs []models.Blog
	if err := h.DB.Order("created_at DESC").Find(&blogs).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, blogs)
}

func (h *BlogHandler) GetBlog(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var blog models.Blog
	if err := h.DB.First(&blog, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "blog not found"})
	}
	return c.JSON(http.StatusOK, blog)
}

func (h *BlogHandler) CreateBlog(c echo.Context) error {
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

	blog := models.Blog{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
		UserID:  userID,
	}
	if err := h.DB.Create(&blog).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, blog)
}

func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var blog models.Blog
	if err := h.DB.First(&blog, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, err)
	}
	if blog.UserID != userID && actorRole(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not your blog")
	}

	if err := h.DB.Delete(&blog).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/agrifarma/platform/internal/models"
	"github.com/agrifarma/platform/internal/service/search"
	"github.com/agrifarma/platform/internal/util"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type SearchHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

// Search spans the whole site: products through Elasticsearch, blogs
// and forum posts through the database.
func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	ctx := c.Request().Context()

	var (
		total    int64
		products []models.Product
	)
	if h.ES != nil {
		var err error
		total, products, err = search.Products(ctx, h.ES, h.Index, q, from, size)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	like := "%" + q + "%"

	var blogs []models.Blog
	if err := h.DB.WithContext(ctx).
		Where("title LIKE ? OR content LIKE ?", like, like).
		Limit(size).Find(&blogs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var posts []models.ForumPost
	if err := h.DB.WithContext(ctx).
		Where("title LIKE ? OR content LIKE ?", like, like).
		Limit(size).Find(&posts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_products": total,
		"products":       products,
		"blogs":          blogs,
		"forums":         posts,
	})
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agrifarma/platform/internal/models"
	"github.com/agrifarma/platform/internal/mykafka"
	"github.com/agrifarma/platform/internal/service/search"
	"github.com/agrifarma/platform/internal/util"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type productView struct {
	models.Product
	FinalPrice  float64 `json:"final_price"`
	StockStatus string  `json:"stock_status"`
}

func newProductView(p models.Product) productView {
	return productView{
		Product:     p,
		FinalPrice:  p.FinalPrice(),
		StockStatus: p.StockStatus(),
	}
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexProduct(ctx, h.ES, h.Index, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "product not found"})
	}

	return c.JSON(http.StatusOK, newProductView(product))
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.Product{})
	if q := c.QueryParam("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category LIKE ?", "%"+category+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	var items []models.Product
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}

	views := make([]productView, len(items))
	for i, p := range items {
		views[i] = newProductView(p)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": views,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Category    string  `json:"category"`
	Stock       uint    `json:"stock"`
	Image       string  `json:"image"`
}

func (r *productRequest) validate() error {
	if r.Price < 0 {
		return fmt.Errorf("price must be >= 0")
	}
	if r.Discount < 0 || r.Discount > 100 {
		return fmt.Errorf("discount must be between 0 and 100")
	}
	return nil
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if err := req.validate(); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Category:    req.Category,
		Stock:       req.Stock,
		Image:       req.Image,
		UserID:      userID,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	h.index(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, newProductView(prod))
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, err)
	}
	if prod.UserID != userID && actorRole(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not your product")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if err := req.validate(); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price
	prod.Discount = req.Discount
	prod.Category = req.Category
	prod.Stock = req.Stock
	prod.Image = req.Image

	if err := h.DB.Save(&prod).Error; err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	h.index(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, newProductView(prod))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, err)
	}
	if prod.UserID != userID && actorRole(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not your product")
	}

	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

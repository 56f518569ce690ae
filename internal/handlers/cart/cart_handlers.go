package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agrifarma/platform/internal/mykafka"
	cartsvc "github.com/agrifarma/platform/internal/service/cart"
	ordersvc "github.com/agrifarma/platform/internal/service/order"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB       *gorm.DB
	Cart     *cartsvc.Service
	Orders   *ordersvc.Service
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	items, err := h.Cart.Items(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.Cart.TotalFor(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": total,
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	item, err := h.Cart.Add(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return cartError(err)
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	item, err := h.Cart.SetQuantity(c.Request().Context(), uint(id), userID, req.Quantity)
	if err != nil {
		return cartError(err)
	}

	h.publish(c, map[string]any{
		"type":     "cart_item_updated",
		"userID":   userID,
		"id":       item.ID,
		"quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Cart.Remove(c.Request().Context(), uint(id), userID); err != nil {
		return cartError(err)
	}

	h.publish(c, map[string]any{
		"type":         "cart_item_deleted",
		"userID":       userID,
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, echo.Map{"deleted_item": id})
}

func (h *CartHandler) PlaceOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	order, items, err := h.Orders.PlaceOrder(c.Request().Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		case errors.Is(err, ordersvc.ErrInsufficientStock):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ordersvc.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.TotalAmount,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"total":    order.TotalAmount,
		"status":   order.Status,
		"items":    items,
	})
}

func (h *CartHandler) GetOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.Orders.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *CartHandler) GetOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, items, err := h.Orders.Get(c.Request().Context(), uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ordersvc.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order": order,
		"items": items,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agrifarma/platform/internal/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ExpertHandler struct {
	DB *gorm.DB
}

func (h *ExpertHandler) GetExperts(c echo.Context) error {
	var experts []models.Expert
	if err := h.DB.Order("is_verified DESC, created_at DESC").Find(&experts).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, experts)
}

func (h *ExpertHandler) GetExpert(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var expert models.Expert
	if err := h.DB.First(&expert, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "expert not found"})
	}
	return c.JSON(http.StatusOK, expert)
}

// PromoteUser flips a user to the expert role and creates the matching
// expert profile when one does not exist yet. Admin only, enforced by
// the route group.
func (h *ExpertHandler) PromoteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "user not found"})
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("role", models.RoleExpert).Error; err != nil {
			return err
		}

		var expert models.Expert
		err := tx.Where("email = ?", user.Email).First(&expert).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.Expert{
				Name:       user.Name,
				Email:      user.Email,
				IsVerified: true,
			}).Error
		}
		return err
	})
	if txErr != nil {
		return c.JSON(http.StatusInternalServerError, txErr)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": user.Name + " promoted to expert"})
}

// DemoteUser reverts an expert to farmer and removes the profile.
func (h *ExpertHandler) DemoteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "user not found"})
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("role", models.RoleFarmer).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", user.Email).Delete(&models.Expert{}).Error
	})
	if txErr != nil {
		return c.JSON(http.StatusInternalServerError, txErr)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": user.Name + " demoted to farmer"})
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agrifarma/platform/internal/models"
	"github.com/agrifarma/platform/internal/mykafka"
	"github.com/agrifarma/platform/internal/service/consult"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ConsultationHandler struct {
	DB       *gorm.DB
	Svc      *consult.Service
	Producer *mykafka.Producer
}

func (h *ConsultationHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "consultation_events", fmt.Sprint(event["consultationID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ConsultationHandler) actor(c echo.Context) (consult.Actor, error) {
	userID, err := actorID(c)
	if err != nil {
		return consult.Actor{}, err
	}
	return consult.Actor{
		UserID: userID,
		Email:  actorEmail(c),
		Role:   actorRole(c),
	}, nil
}

func (h *ConsultationHandler) CreateConsultation(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}

	var req struct {
		FarmerName  string `json:"farmer_name"`
		FarmerEmail string `json:"farmer_email"`
		Problem     string `json:"problem"`
		ExpertID    *uint  `json:"expert_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if req.FarmerEmail == "" {
		req.FarmerEmail = actorEmail(c)
	}

	created, err := h.Svc.Create(c.Request().Context(), consult.CreateRequest{
		FarmerName:  req.FarmerName,
		FarmerEmail: req.FarmerEmail,
		Problem:     req.Problem,
		ExpertID:    req.ExpertID,
	})
	if err != nil {
		switch {
		case errors.Is(err, consult.ErrEmptyResponse):
			return echo.NewHTTPError(http.StatusBadRequest, "problem text required")
		case errors.Is(err, consult.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	h.publish(c, map[string]any{
		"type":           "consultation_created",
		"consultationID": created.ID,
		"farmer_email":   created.FarmerEmail,
	})

	return c.JSON(http.StatusCreated, created)
}

// GetConsultations lists by role: admins see everything, experts their
// assigned requests, farmers their own.
func (h *ConsultationHandler) GetConsultations(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}
	ctx := c.Request().Context()

	switch actorRole(c) {
	case models.RoleAdmin:
		consults, err := h.Svc.ListAll(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, consults)

	case models.RoleExpert:
		var expert models.Expert
		if err := h.DB.Where("email = ?", actorEmail(c)).First(&expert).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "expert profile not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		consults, err := h.Svc.ListForExpert(ctx, expert.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, consults)

	default:
		consults, err := h.Svc.ListForFarmer(ctx, actorEmail(c))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, consults)
	}
}

func (h *ConsultationHandler) GetConsultation(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	found, err := h.Svc.Get(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, consult.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, found)
}

func (h *ConsultationHandler) Respond(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Response string `json:"response"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	updated, err := h.Svc.Respond(c.Request().Context(), uint(id), actor, req.Response)
	if err != nil {
		switch {
		case errors.Is(err, consult.ErrEmptyResponse):
			return echo.NewHTTPError(http.StatusBadRequest, "response cannot be empty")
		case errors.Is(err, consult.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, consult.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	h.publish(c, map[string]any{
		"type":           "consultation_resolved",
		"consultationID": updated.ID,
		"responder":      actor.Email,
	})

	return c.JSON(http.StatusOK, updated)
}

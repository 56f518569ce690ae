package consult

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agrifarma/platform/internal/logging"
	"github.com/agrifarma/platform/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEmptyResponse = errors.New("empty response")
)

// Actor is the authenticated caller, passed in explicitly by the
// transport layer.
type Actor struct {
	UserID uint
	Email  string
	Role   string
}

type Service struct {
	DB *gorm.DB
}

type CreateRequest struct {
	FarmerName  string
	FarmerEmail string
	Problem     string
	ExpertID    *uint
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Consultation, error) {
	if strings.TrimSpace(req.Problem) == "" {
		return nil, fmt.Errorf("problem text: %w", ErrEmptyResponse)
	}

	if req.ExpertID != nil {
		var expert models.Expert
		if err := s.DB.WithContext(ctx).First(&expert, *req.ExpertID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("expert %d: %w", *req.ExpertID, ErrNotFound)
			}
			return nil, err
		}
	}

	c := models.Consultation{
		FarmerName:  req.FarmerName,
		FarmerEmail: req.FarmerEmail,
		Problem:     req.Problem,
		ExpertID:    req.ExpertID,
		Status:      models.ConsultationPending,
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Respond resolves a consultation. Admins may answer anything; an
// expert may answer an unassigned consultation (claiming it) or one
// assigned to their own expert profile. Re-answering an already
// resolved consultation is allowed and amends the previous response.
func (s *Service) Respond(ctx context.Context, consultationID uint, actor Actor, text string) (*models.Consultation, error) {
	l := logging.FromContext(ctx).With("svc", "consult.respond", "consultation_id", consultationID)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var c models.Consultation
	if err := s.DB.WithContext(ctx).First(&c, consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("consultation %d: %w", consultationID, ErrNotFound)
		}
		return nil, err
	}

	expertID, err := s.authorize(ctx, &c, actor)
	if err != nil {
		l.Warn("respond_rejected", "actor", actor.Email, "error", err)
		return nil, err
	}

	c.Response = text
	c.Status = models.ConsultationResolved
	if expertID != nil {
		c.ExpertID = expertID
	}
	if err := s.DB.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, err
	}

	l.Info("respond_success", "actor", actor.Email, "status", c.Status)
	return &c, nil
}

func (s *Service) authorize(ctx context.Context, c *models.Consultation, actor Actor) (*uint, error) {
	switch actor.Role {
	case models.RoleAdmin:
		// Admins keep the existing assignment unless they have an
		// expert profile of their own.
		var expert models.Expert
		err := s.DB.WithContext(ctx).Where("email = ?", actor.Email).First(&expert).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &expert.ID, nil

	case models.RoleExpert:
		var expert models.Expert
		if err := s.DB.WithContext(ctx).Where("email = ?", actor.Email).First(&expert).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("no expert profile for %s: %w", actor.Email, ErrUnauthorized)
			}
			return nil, err
		}
		if c.ExpertID != nil && *c.ExpertID != expert.ID {
			return nil, fmt.Errorf("consultation assigned to another expert: %w", ErrUnauthorized)
		}
		return &expert.ID, nil

	default:
		return nil, fmt.Errorf("role %q cannot respond: %w", actor.Role, ErrUnauthorized)
	}
}

func (s *Service) Get(ctx context.Context, consultationID uint) (*models.Consultation, error) {
	var c models.Consultation
	if err := s.DB.WithContext(ctx).First(&c, consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("consultation %d: %w", consultationID, ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (s *Service) ListAll(ctx context.Context) ([]models.Consultation, error) {
	var consults []models.Consultation
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&consults).Error; err != nil {
		return nil, err
	}
	return consults, nil
}

func (s *Service) ListForExpert(ctx context.Context, expertID uint) ([]models.Consultation, error) {
	var consults []models.Consultation
	if err := s.DB.WithContext(ctx).
		Where("expert_id = ?", expertID).
		Order("created_at DESC").
		Find(&consults).Error; err != nil {
		return nil, err
	}
	return consults, nil
}

func (s *Service) ListForFarmer(ctx context.Context, farmerEmail string) ([]models.Consultation, error) {
	var consults []models.Consultation
	if err := s.DB.WithContext(ctx).
		Where("farmer_email = ?", farmerEmail).
		Order("created_at DESC").
		Find(&consults).Error; err != nil {
		return nil, err
	}
	return consults, nil
}

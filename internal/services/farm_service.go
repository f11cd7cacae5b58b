package services

import (
	"strings"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrFarmNotFound = notFound("farm")

type FarmService struct {
	farmRepo *repository.FarmRepository
	userRepo *repository.UserRepository
	db       *gorm.DB
	log      *zap.Logger
}

func NewFarmService(farmRepo *repository.FarmRepository, userRepo *repository.UserRepository, db *gorm.DB, log *zap.Logger) *FarmService {
	return &FarmService{
		farmRepo: farmRepo,
		userRepo: userRepo,
		db:       db,
		log:      log,
	}
}

func ValidRole(role string) bool {
	switch role {
	case models.RoleOwner, models.RoleManager, models.RoleSupervisor:
		return true
	}
	return false
}

// CreateFarm creates a farm and makes the creator its owner.
func (s *FarmService) CreateFarm(name, location, username string) (*models.Farm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("farm name is required")
	}

	farm := &models.Farm{Name: name, Location: strings.TrimSpace(location)}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByUsernameInTx(tx, username)
		if err != nil {
			return remote("find user", err)
		}
		if user == nil {
			return ErrUserNotFound
		}

		if err := s.farmRepo.CreateInTx(tx, farm); err != nil {
			return remote("create farm", err)
		}

		err = s.farmRepo.AddMemberInTx(tx, &models.FarmMembership{
			FarmID:   farm.ID,
			UserID:   user.ID,
			Role:     models.RoleOwner,
			IsActive: true,
		})
		if err != nil {
			return remote("add farm owner", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("farm created", zap.Uint("farm_id", farm.ID), zap.String("owner", username))
	return farm, nil
}

func (s *FarmService) GetFarm(farmID uint) (*models.Farm, error) {
	farm, err := s.farmRepo.FindByID(farmID)
	if err != nil {
		return nil, remote("find farm", err)
	}
	if farm == nil {
		return nil, ErrFarmNotFound
	}
	return farm, nil
}

func (s *FarmService) ListForUser(username string) ([]models.FarmMembership, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, remote("find user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.farmRepo.ListActiveMemberships(user.ID)
}

// Role returns the user's active role on the farm, or "" without access.
func (s *FarmService) Role(farmID uint, username string) (string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return "", remote("find user", err)
	}
	if user == nil {
		return "", nil
	}

	membership, err := s.farmRepo.FindMembership(farmID, user.ID)
	if err != nil {
		return "", remote("find membership", err)
	}
	if membership == nil || !membership.IsActive {
		return "", nil
	}
	return membership.Role, nil
}

// SetMember grants or changes a user's role on the farm.
func (s *FarmService) SetMember(farmID uint, username, role string) (*models.FarmMembership, error) {
	if !ValidRole(role) {
		return nil, validationf("role must be one of owner, manager, supervisor")
	}
	if _, err := s.GetFarm(farmID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, remote("find user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	membership, err := s.farmRepo.FindMembership(farmID, user.ID)
	if err != nil {
		return nil, remote("find membership", err)
	}
	if membership == nil {
		membership = &models.FarmMembership{FarmID: farmID, UserID: user.ID}
	}
	membership.Role = role
	membership.IsActive = true

	if err := s.farmRepo.SaveMembership(membership); err != nil {
		return nil, remote("save membership", err)
	}

	s.log.Info("farm member set", zap.Uint("farm_id", farmID), zap.String("username", username), zap.String("role", role))
	return membership, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
	"github.com/LuisRz1/pluginProvcalApp/pkg/repositories"
)

// ProposedChange is one requested edit to a meal. An emergency change is
// applied to the menu immediately and recorded as emergency_applied
// instead of awaiting review; one batch can mix both kinds.
type ProposedChange struct {
	DailyMenuID uuid.UUID `json:"daily_menu_id"`
	DayDate     time.Time `json:"day_date"`
	MealType    string    `json:"meal_type"`
	NewValue    string    `json:"new_value"`
	Reason      string    `json:"reason"`
	Emergency   bool      `json:"emergency"`
}

// ProposeResult groups the change requests created by one propose call.
type ProposeResult struct {
	BatchID uuid.UUID                   `json:"batch_id"`
	Changes []*models.MenuChangeRequest `json:"changes"`
}

// ChangeWorkflowService handles the propose/review lifecycle of menu
// change requests.
type ChangeWorkflowService interface {
	// Propose records a batch of change requests atomically under one
	// batch ID. Items flagged as emergency are applied on the spot.
	Propose(ctx context.Context, proposals []ProposedChange, requestedBy uuid.UUID) (*ProposeResult, error)

	// Review decides one pending request. Approving applies the new
	// value to the meal; rejecting leaves the menu untouched. Concurrent
	// reviews of the same request serialize on a row lock, so exactly
	// one decision wins.
	Review(ctx context.Context, changeID uuid.UUID, approve bool, deciderID uuid.UUID, notes *string) (*models.MenuChangeRequest, error)

	// History returns every change request whose day falls in the given
	// month, newest first.
	History(ctx context.Context, year, month int) ([]*models.MenuChangeRequest, error)
}

type changeWorkflowService struct {
	db                database.TxRunner
	dailyRepo         repositories.DailyMenuRepository
	mealRepo          repositories.MealRepository
	componentRepo     repositories.MealComponentRepository
	componentTypeRepo repositories.ComponentTypeRepository
	changeRepo        repositories.MenuChangeRepository
	logger            *zap.Logger
}

// ChangeWorkflowDeps contains dependencies for ChangeWorkflowService.
type ChangeWorkflowDeps struct {
	DB                database.TxRunner
	DailyRepo         repositories.DailyMenuRepository
	MealRepo          repositories.MealRepository
	ComponentRepo     repositories.MealComponentRepository
	ComponentTypeRepo repositories.ComponentTypeRepository
	ChangeRepo        repositories.MenuChangeRepository
	Logger            *zap.Logger
}

// NewChangeWorkflowService creates a new ChangeWorkflowService.
func NewChangeWorkflowService(deps *ChangeWorkflowDeps) ChangeWorkflowService {
	return &changeWorkflowService{
		db:                deps.DB,
		dailyRepo:         deps.DailyRepo,
		mealRepo:          deps.MealRepo,
		componentRepo:     deps.ComponentRepo,
		componentTypeRepo: deps.ComponentTypeRepo,
		changeRepo:        deps.ChangeRepo,
		logger:            deps.Logger,
	}
}

var _ ChangeWorkflowService = (*changeWorkflowService)(nil)

func (s *changeWorkflowService) Propose(ctx context.Context, proposals []ProposedChange, requestedBy uuid.UUID) (*ProposeResult, error) {
	if len(proposals) == 0 {
		return nil, fmt.Errorf("no changes proposed: %w", apperrors.ErrInvalidState)
	}

	batchID := uuid.New()
	result := &ProposeResult{BatchID: batchID}

	emergencies := 0
	err := s.db.InTx(ctx, func(txCtx context.Context) error {
		for _, p := range proposals {
			change, err := s.proposeOne(txCtx, p, requestedBy, batchID)
			if err != nil {
				return err
			}
			if p.Emergency {
				emergencies++
			}
			result.Changes = append(result.Changes, change)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("change batch proposed",
		zap.String("batch_id", batchID.String()),
		zap.Int("count", len(result.Changes)),
		zap.Int("emergencies", emergencies))

	return result, nil
}

func (s *changeWorkflowService) proposeOne(ctx context.Context, p ProposedChange, requestedBy, batchID uuid.UUID) (*models.MenuChangeRequest, error) {
	if err := validateProposal(p); err != nil {
		return nil, err
	}

	day, err := s.dailyRepo.GetByID(ctx, p.DailyMenuID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, fmt.Errorf("daily menu %s: %w", p.DailyMenuID, apperrors.ErrNotFound)
	}
	// The request carries both the menu ID and the date; a mismatch
	// means the caller is editing a day that no longer matches its view.
	if !sameDate(day.Date, p.DayDate) {
		return nil, fmt.Errorf("day date %s does not match daily menu %s: %w",
			p.DayDate.Format("2006-01-02"), p.DailyMenuID, apperrors.ErrNotFound)
	}

	oldValue, err := s.snapshotOldValue(ctx, p.DailyMenuID, p.MealType)
	if err != nil {
		return nil, err
	}

	change := &models.MenuChangeRequest{
		DailyMenuID: p.DailyMenuID,
		DayDate:     day.Date,
		MealType:    p.MealType,
		OldValue:    oldValue,
		NewValue:    p.NewValue,
		Reason:      p.Reason,
		Status:      models.ChangeStatusPending,
		RequestedBy: requestedBy,
		BatchID:     &batchID,
	}

	if p.Emergency {
		if err := s.applyChange(ctx, change); err != nil {
			return nil, err
		}
		if err := change.MarkEmergencyApplied(); err != nil {
			return nil, err
		}
	}

	if err := s.changeRepo.Create(ctx, change); err != nil {
		return nil, err
	}
	return change, nil
}

func (s *changeWorkflowService) Review(ctx context.Context, changeID uuid.UUID, approve bool, deciderID uuid.UUID, notes *string) (*models.MenuChangeRequest, error) {
	var reviewed *models.MenuChangeRequest

	err := s.db.InTx(ctx, func(txCtx context.Context) error {
		change, err := s.changeRepo.GetByIDForUpdate(txCtx, changeID)
		if err != nil {
			return err
		}
		if change == nil {
			return fmt.Errorf("change request %s: %w", changeID, apperrors.ErrNotFound)
		}

		if approve {
			if err := change.Approve(deciderID, notes); err != nil {
				return err
			}
			if err := s.applyChange(txCtx, change); err != nil {
				return err
			}
		} else {
			if err := change.Reject(deciderID, notes); err != nil {
				return err
			}
		}

		if err := s.changeRepo.UpdateDecision(txCtx, change); err != nil {
			return err
		}

		reviewed = change
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("change reviewed",
		zap.String("change_id", changeID.String()),
		zap.String("status", reviewed.Status))

	return reviewed, nil
}

func (s *changeWorkflowService) History(ctx context.Context, year, month int) ([]*models.MenuChangeRequest, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.changeRepo.ListByDateRange(ctx, from, to)
}

// applyChange writes the new value into the referenced meal. A day that
// never had the meal gets it created, and a meal without components gets
// a single generic one, so an approved change is always visible.
func (s *changeWorkflowService) applyChange(ctx context.Context, change *models.MenuChangeRequest) error {
	meal, err := s.mealRepo.FindByDailyAndType(ctx, change.DailyMenuID, change.MealType)
	if err != nil {
		return err
	}
	if meal == nil {
		meal = &models.Meal{DailyMenuID: change.DailyMenuID, MealType: change.MealType}
		if err := s.mealRepo.Create(ctx, meal); err != nil {
			return err
		}
	}

	components, err := s.componentRepo.ListByMeal(ctx, meal.ID)
	if err != nil {
		return err
	}

	if len(components) == 0 {
		generic, err := s.componentTypeRepo.GetOrCreate(ctx, models.GenericComponentTypeName)
		if err != nil {
			return err
		}
		return s.componentRepo.Create(ctx, &models.MealComponent{
			MealID:          meal.ID,
			ComponentTypeID: generic.ID,
			DishName:        change.NewValue,
			OrderPosition:   1,
		})
	}

	return s.componentRepo.UpdateDishName(ctx, components[0].ID, change.NewValue)
}

// snapshotOldValue captures the first component's dish name at proposal
// time, or "" when the meal does not exist yet.
func (s *changeWorkflowService) snapshotOldValue(ctx context.Context, dailyMenuID uuid.UUID, mealType string) (string, error) {
	meal, err := s.mealRepo.FindByDailyAndType(ctx, dailyMenuID, mealType)
	if err != nil {
		return "", err
	}
	if meal == nil {
		return "", nil
	}

	components, err := s.componentRepo.ListByMeal(ctx, meal.ID)
	if err != nil {
		return "", err
	}
	if len(components) == 0 {
		return "", nil
	}
	return components[0].DishName, nil
}

func validateProposal(p ProposedChange) error {
	if !validMealType(p.MealType) {
		return fmt.Errorf("unknown meal type %q: %w", p.MealType, apperrors.ErrInvalidState)
	}
	if p.NewValue == "" {
		return fmt.Errorf("new value is required: %w", apperrors.ErrInvalidState)
	}
	if p.Reason == "" {
		return fmt.Errorf("reason is required: %w", apperrors.ErrInvalidState)
	}
	return nil
}

func validMealType(mealType string) bool {
	for _, mt := range models.MealTypes {
		if mt == mealType {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
	"github.com/LuisRz1/pluginProvcalApp/pkg/repositories"
	"github.com/LuisRz1/pluginProvcalApp/pkg/workbook"
)

// MonthlyMenuView is the fully loaded tree of one month.
type MonthlyMenuView struct {
	Menu  *models.MonthlyMenu `json:"menu"`
	Weeks []WeekView          `json:"weeks"`
}

// WeekView is one week with its days loaded.
type WeekView struct {
	Week *models.WeeklyMenu `json:"week"`
	Days []DayView          `json:"days"`
}

// DayView is one day with its meals loaded.
type DayView struct {
	Day   *models.DailyMenu `json:"day"`
	Meals []MealView        `json:"meals"`
}

// MealView is one meal with its components and their type names.
type MealView struct {
	Meal       *models.Meal    `json:"meal"`
	Components []ComponentView `json:"components"`
}

// ComponentView is one dish plus its resolved dictionary name.
type ComponentView struct {
	Component *models.MealComponent `json:"component"`
	TypeName  string                `json:"type_name"`
}

// MenuQueryService reads the normalized menu tree.
type MenuQueryService interface {
	// GetMonthlyMenu loads the whole tree for a month.
	GetMonthlyMenu(ctx context.Context, year, month int) (*MonthlyMenuView, error)

	// GetMealForDay loads one meal of one calendar date.
	GetMealForDay(ctx context.Context, date time.Time, mealType string) (*MealView, error)

	// ExportMonthlyMenu renders the month as an xlsx file and returns
	// the bytes plus a suggested filename.
	ExportMonthlyMenu(ctx context.Context, year, month int) ([]byte, string, error)
}

type menuQueryService struct {
	monthlyRepo       repositories.MonthlyMenuRepository
	weeklyRepo        repositories.WeeklyMenuRepository
	dailyRepo         repositories.DailyMenuRepository
	mealRepo          repositories.MealRepository
	componentRepo     repositories.MealComponentRepository
	componentTypeRepo repositories.ComponentTypeRepository
	logger            *zap.Logger
}

// MenuQueryDeps contains dependencies for MenuQueryService.
type MenuQueryDeps struct {
	MonthlyRepo       repositories.MonthlyMenuRepository
	WeeklyRepo        repositories.WeeklyMenuRepository
	DailyRepo         repositories.DailyMenuRepository
	MealRepo          repositories.MealRepository
	ComponentRepo     repositories.MealComponentRepository
	ComponentTypeRepo repositories.ComponentTypeRepository
	Logger            *zap.Logger
}

// NewMenuQueryService creates a new MenuQueryService.
func NewMenuQueryService(deps *MenuQueryDeps) MenuQueryService {
	return &menuQueryService{
		monthlyRepo:       deps.MonthlyRepo,
		weeklyRepo:        deps.WeeklyRepo,
		dailyRepo:         deps.DailyRepo,
		mealRepo:          deps.MealRepo,
		componentRepo:     deps.ComponentRepo,
		componentTypeRepo: deps.ComponentTypeRepo,
		logger:            deps.Logger,
	}
}

var _ MenuQueryService = (*menuQueryService)(nil)

func (s *menuQueryService) GetMonthlyMenu(ctx context.Context, year, month int) (*MonthlyMenuView, error) {
	menu, err := s.monthlyRepo.FindByYearMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, fmt.Errorf("menu for %04d-%02d: %w", year, month, apperrors.ErrNotFound)
	}

	typeNames, err := s.componentTypeNames(ctx)
	if err != nil {
		return nil, err
	}

	weeks, err := s.weeklyRepo.ListByMonthlyMenu(ctx, menu.ID)
	if err != nil {
		return nil, err
	}

	view := &MonthlyMenuView{Menu: menu}
	for _, week := range weeks {
		wv := WeekView{Week: week}

		days, err := s.dailyRepo.ListByWeek(ctx, week.ID)
		if err != nil {
			return nil, err
		}
		for _, day := range days {
			dv, err := s.loadDay(ctx, day, typeNames)
			if err != nil {
				return nil, err
			}
			wv.Days = append(wv.Days, dv)
		}
		view.Weeks = append(view.Weeks, wv)
	}

	return view, nil
}

func (s *menuQueryService) GetMealForDay(ctx context.Context, date time.Time, mealType string) (*MealView, error) {
	if !validMealType(mealType) {
		return nil, fmt.Errorf("unknown meal type %q: %w", mealType, apperrors.ErrInvalidState)
	}

	day, err := s.dailyRepo.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, fmt.Errorf("menu for %s: %w", date.Format("2006-01-02"), apperrors.ErrNotFound)
	}

	meal, err := s.mealRepo.FindByDailyAndType(ctx, day.ID, mealType)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, fmt.Errorf("%s on %s: %w", mealType, date.Format("2006-01-02"), apperrors.ErrNotFound)
	}

	typeNames, err := s.componentTypeNames(ctx)
	if err != nil {
		return nil, err
	}

	return s.loadMeal(ctx, meal, typeNames)
}

func (s *menuQueryService) ExportMonthlyMenu(ctx context.Context, year, month int) ([]byte, string, error) {
	view, err := s.GetMonthlyMenu(ctx, year, month)
	if err != nil {
		return nil, "", err
	}

	var days []workbook.ExportDay
	for _, week := range view.Weeks {
		for _, day := range week.Days {
			ed := workbook.ExportDay{
				Date:      day.Day.Date,
				DayOfWeek: day.Day.DayOfWeek,
				IsHoliday: day.Day.IsHoliday,
			}
			for _, meal := range day.Meals {
				text := mealText(meal)
				switch meal.Meal.MealType {
				case models.MealTypeBreakfast:
					ed.Breakfast = text
				case models.MealTypeLunch:
					ed.Lunch = text
				case models.MealTypeDinner:
					ed.Dinner = text
				}
			}
			days = append(days, ed)
		}
	}

	data, err := workbook.BuildMonthlyExport(year, month, days)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("menu_%04d_%02d.xlsx", year, month)
	return data, filename, nil
}

func (s *menuQueryService) loadDay(ctx context.Context, day *models.DailyMenu, typeNames map[string]string) (DayView, error) {
	dv := DayView{Day: day}

	meals, err := s.mealRepo.ListByDailyMenu(ctx, day.ID)
	if err != nil {
		return DayView{}, err
	}
	for _, meal := range meals {
		mv, err := s.loadMeal(ctx, meal, typeNames)
		if err != nil {
			return DayView{}, err
		}
		dv.Meals = append(dv.Meals, *mv)
	}

	return dv, nil
}

func (s *menuQueryService) loadMeal(ctx context.Context, meal *models.Meal, typeNames map[string]string) (*MealView, error) {
	components, err := s.componentRepo.ListByMeal(ctx, meal.ID)
	if err != nil {
		return nil, err
	}

	mv := &MealView{Meal: meal}
	for _, c := range components {
		mv.Components = append(mv.Components, ComponentView{
			Component: c,
			TypeName:  typeNames[c.ComponentTypeID.String()],
		})
	}
	return mv, nil
}

func (s *menuQueryService) componentTypeNames(ctx context.Context) (map[string]string, error) {
	types, err := s.componentTypeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(types))
	for _, ct := range types {
		names[ct.ID.String()] = ct.Name
	}
	return names, nil
}

// mealText flattens a meal's dishes into one export cell.
func mealText(meal MealView) string {
	var dishes []string
	for _, c := range meal.Components {
		dishes = append(dishes, c.Component.DishName)
	}
	return strings.Join(dishes, ", ")
}

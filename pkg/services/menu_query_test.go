package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

type queryFixture struct {
	state   *menuState
	types   *mockComponentTypeRepo
	service MenuQueryService
}

func newQueryFixture() *queryFixture {
	state := newMenuState()
	types := newMockComponentTypeRepo()
	svc := NewMenuQueryService(&MenuQueryDeps{
		MonthlyRepo:       &mockMonthlyRepo{state: state},
		WeeklyRepo:        &mockWeeklyRepo{state: state},
		DailyRepo:         &mockDailyRepo{state: state},
		MealRepo:          &mockMealRepo{state: state},
		ComponentRepo:     &mockMealComponentRepo{state: state},
		ComponentTypeRepo: types,
		Logger:            zap.NewNop(),
	})
	return &queryFixture{state: state, types: types, service: svc}
}

// seedMonth plants an active March 2025 menu with one week and one day
// carrying a two-dish lunch.
func (fx *queryFixture) seedMonth(t *testing.T) *models.DailyMenu {
	t.Helper()

	menu := &models.MonthlyMenu{ID: uuid.New(), Year: 2025, Month: 3, Status: models.MenuStatusActive}
	fx.state.monthly[menu.ID] = menu

	week := &models.WeeklyMenu{ID: uuid.New(), MonthlyMenuID: menu.ID, WeekNumber: 1, Title: "SEMANA 1"}
	fx.state.weekly[week.ID] = week

	day := &models.DailyMenu{
		ID:           uuid.New(),
		WeeklyMenuID: week.ID,
		Date:         time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		DayOfWeek:    "LUNES",
	}
	fx.state.daily[day.ID] = day

	meal := &models.Meal{ID: uuid.New(), DailyMenuID: day.ID, MealType: models.MealTypeLunch}
	fx.state.meals[meal.ID] = meal

	entrada, err := fx.types.GetOrCreate(context.Background(), "ENTRADA")
	require.NoError(t, err)
	fondo, err := fx.types.GetOrCreate(context.Background(), "PLATO DE FONDO")
	require.NoError(t, err)

	for i, c := range []struct {
		typeID uuid.UUID
		dish   string
	}{
		{entrada.ID, "Papa a la huancaína"},
		{fondo.ID, "Lomo saltado"},
	} {
		comp := &models.MealComponent{
			ID:              uuid.New(),
			MealID:          meal.ID,
			ComponentTypeID: c.typeID,
			DishName:        c.dish,
			OrderPosition:   i + 1,
		}
		fx.state.components[comp.ID] = comp
	}

	return day
}

func TestGetMonthlyMenu_LoadsFullTree(t *testing.T) {
	fx := newQueryFixture()
	fx.seedMonth(t)

	view, err := fx.service.GetMonthlyMenu(context.Background(), 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, models.MenuStatusActive, view.Menu.Status)
	require.Len(t, view.Weeks, 1)
	assert.Equal(t, "SEMANA 1", view.Weeks[0].Week.Title)
	require.Len(t, view.Weeks[0].Days, 1)

	day := view.Weeks[0].Days[0]
	require.Len(t, day.Meals, 1)
	meal := day.Meals[0]
	assert.Equal(t, models.MealTypeLunch, meal.Meal.MealType)
	require.Len(t, meal.Components, 2)
	assert.Equal(t, "Papa a la huancaína", meal.Components[0].Component.DishName)
	assert.Equal(t, "ENTRADA", meal.Components[0].TypeName)
	assert.Equal(t, "PLATO DE FONDO", meal.Components[1].TypeName)
}

func TestGetMonthlyMenu_NotFound(t *testing.T) {
	fx := newQueryFixture()

	_, err := fx.service.GetMonthlyMenu(context.Background(), 2025, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetMealForDay(t *testing.T) {
	fx := newQueryFixture()
	day := fx.seedMonth(t)

	meal, err := fx.service.GetMealForDay(context.Background(), day.Date, models.MealTypeLunch)
	require.NoError(t, err)
	require.Len(t, meal.Components, 2)
	assert.Equal(t, "Lomo saltado", meal.Components[1].Component.DishName)
}

func TestGetMealForDay_Errors(t *testing.T) {
	fx := newQueryFixture()
	day := fx.seedMonth(t)

	tests := []struct {
		name     string
		date     time.Time
		mealType string
		want     error
	}{
		{
			name:     "unknown meal type",
			date:     day.Date,
			mealType: "brunch",
			want:     apperrors.ErrInvalidState,
		},
		{
			name:     "no menu for date",
			date:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			mealType: models.MealTypeLunch,
			want:     apperrors.ErrNotFound,
		},
		{
			name:     "meal not served that day",
			date:     day.Date,
			mealType: models.MealTypeDinner,
			want:     apperrors.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.GetMealForDay(context.Background(), tt.date, tt.mealType)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestExportMonthlyMenu(t *testing.T) {
	fx := newQueryFixture()
	fx.seedMonth(t)

	data, filename, err := fx.service.ExportMonthlyMenu(context.Background(), 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "menu_2025_03.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet := "Menú 2025-03"
	date, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", date)

	lunch, err := f.GetCellValue(sheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "Papa a la huancaína, Lomo saltado", lunch)
}

func TestExportMonthlyMenu_NotFound(t *testing.T) {
	fx := newQueryFixture()

	_, _, err := fx.service.ExportMonthlyMenu(context.Background(), 2024, 12)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
)

// passthroughTx satisfies database.TxRunner without a real database.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// menuState is a shared in-memory tree backing the mock repositories, so
// deletes cascade the way the schema does.
type menuState struct {
	monthly    map[uuid.UUID]*models.MonthlyMenu
	weekly     map[uuid.UUID]*models.WeeklyMenu
	daily      map[uuid.UUID]*models.DailyMenu
	meals      map[uuid.UUID]*models.Meal
	components map[uuid.UUID]*models.MealComponent
	changes    map[uuid.UUID]*models.MenuChangeRequest
}

func newMenuState() *menuState {
	return &menuState{
		monthly:    make(map[uuid.UUID]*models.MonthlyMenu),
		weekly:     make(map[uuid.UUID]*models.WeeklyMenu),
		daily:      make(map[uuid.UUID]*models.DailyMenu),
		meals:      make(map[uuid.UUID]*models.Meal),
		components: make(map[uuid.UUID]*models.MealComponent),
		changes:    make(map[uuid.UUID]*models.MenuChangeRequest),
	}
}

func (s *menuState) deleteDay(dayID uuid.UUID) {
	for mealID, meal := range s.meals {
		if meal.DailyMenuID != dayID {
			continue
		}
		for compID, comp := range s.components {
			if comp.MealID == mealID {
				delete(s.components, compID)
			}
		}
		delete(s.meals, mealID)
	}
	delete(s.daily, dayID)
}

type mockMonthlyRepo struct {
	state *menuState
}

func (m *mockMonthlyRepo) Upsert(_ context.Context, menu *models.MonthlyMenu) error {
	for _, existing := range m.state.monthly {
		if existing.Year == menu.Year && existing.Month == menu.Month {
			existing.Status = menu.Status
			existing.SourceFilename = menu.SourceFilename
			existing.UpdatedAt = time.Now()
			*menu = *existing
			return nil
		}
	}
	menu.ID = uuid.New()
	menu.CreatedAt = time.Now()
	menu.UpdatedAt = menu.CreatedAt
	copied := *menu
	m.state.monthly[menu.ID] = &copied
	return nil
}

func (m *mockMonthlyRepo) GetByID(_ context.Context, menuID uuid.UUID) (*models.MonthlyMenu, error) {
	return m.state.monthly[menuID], nil
}

func (m *mockMonthlyRepo) FindByYearMonth(_ context.Context, year, month int) (*models.MonthlyMenu, error) {
	for _, menu := range m.state.monthly {
		if menu.Year == year && menu.Month == month {
			return menu, nil
		}
	}
	return nil, nil
}

func (m *mockMonthlyRepo) SetStatus(_ context.Context, menuID uuid.UUID, status string) error {
	menu, ok := m.state.monthly[menuID]
	if !ok {
		return fmt.Errorf("monthly menu %s: %w", menuID, apperrors.ErrNotFound)
	}
	menu.Status = status
	return nil
}

type mockWeeklyRepo struct {
	state *menuState
}

func (m *mockWeeklyRepo) Upsert(_ context.Context, week *models.WeeklyMenu) error {
	for _, existing := range m.state.weekly {
		if existing.MonthlyMenuID == week.MonthlyMenuID && existing.WeekNumber == week.WeekNumber {
			existing.Title = week.Title
			*week = *existing
			return nil
		}
	}
	week.ID = uuid.New()
	copied := *week
	m.state.weekly[week.ID] = &copied
	return nil
}

func (m *mockWeeklyRepo) DeleteByMonthlyMenu(_ context.Context, monthlyMenuID uuid.UUID) error {
	for weekID, week := range m.state.weekly {
		if week.MonthlyMenuID != monthlyMenuID {
			continue
		}
		for dayID, day := range m.state.daily {
			if day.WeeklyMenuID == weekID {
				m.state.deleteDay(dayID)
			}
		}
		delete(m.state.weekly, weekID)
	}
	return nil
}

func (m *mockWeeklyRepo) ListByMonthlyMenu(_ context.Context, monthlyMenuID uuid.UUID) ([]*models.WeeklyMenu, error) {
	var weeks []*models.WeeklyMenu
	for _, w := range m.state.weekly {
		if w.MonthlyMenuID == monthlyMenuID {
			weeks = append(weeks, w)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekNumber < weeks[j].WeekNumber })
	return weeks, nil
}

type mockDailyRepo struct {
	state *menuState
}

func (m *mockDailyRepo) ReplaceForWeek(_ context.Context, weeklyMenuID uuid.UUID, days []*models.DailyMenu) error {
	for id, day := range m.state.daily {
		if day.WeeklyMenuID == weeklyMenuID {
			m.state.deleteDay(id)
		}
	}
	for _, day := range days {
		day.ID = uuid.New()
		day.WeeklyMenuID = weeklyMenuID
		day.CreatedAt = time.Now()
		day.UpdatedAt = day.CreatedAt
		copied := *day
		m.state.daily[day.ID] = &copied
	}
	return nil
}

func (m *mockDailyRepo) GetByID(_ context.Context, dailyMenuID uuid.UUID) (*models.DailyMenu, error) {
	return m.state.daily[dailyMenuID], nil
}

func (m *mockDailyRepo) FindByDate(_ context.Context, date time.Time) (*models.DailyMenu, error) {
	for _, day := range m.state.daily {
		if day.Date.Equal(date) {
			return day, nil
		}
	}
	return nil, nil
}

func (m *mockDailyRepo) ListByWeek(_ context.Context, weeklyMenuID uuid.UUID) ([]*models.DailyMenu, error) {
	var days []*models.DailyMenu
	for _, day := range m.state.daily {
		if day.WeeklyMenuID == weeklyMenuID {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

func (m *mockDailyRepo) ListByMonthlyMenu(_ context.Context, monthlyMenuID uuid.UUID) ([]*models.DailyMenu, error) {
	var days []*models.DailyMenu
	for _, day := range m.state.daily {
		week, ok := m.state.weekly[day.WeeklyMenuID]
		if ok && week.MonthlyMenuID == monthlyMenuID {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

type mockMealRepo struct {
	state *menuState
}

func (m *mockMealRepo) Create(_ context.Context, meal *models.Meal) error {
	meal.ID = uuid.New()
	copied := *meal
	m.state.meals[meal.ID] = &copied
	return nil
}

func (m *mockMealRepo) CreateBatch(ctx context.Context, meals []*models.Meal) error {
	for _, meal := range meals {
		if err := m.Create(ctx, meal); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockMealRepo) FindByDailyAndType(_ context.Context, dailyMenuID uuid.UUID, mealType string) (*models.Meal, error) {
	for _, meal := range m.state.meals {
		if meal.DailyMenuID == dailyMenuID && meal.MealType == mealType {
			return meal, nil
		}
	}
	return nil, nil
}

func (m *mockMealRepo) ListByDailyMenu(_ context.Context, dailyMenuID uuid.UUID) ([]*models.Meal, error) {
	rank := map[string]int{models.MealTypeBreakfast: 1, models.MealTypeLunch: 2, models.MealTypeDinner: 3}
	var meals []*models.Meal
	for _, meal := range m.state.meals {
		if meal.DailyMenuID == dailyMenuID {
			meals = append(meals, meal)
		}
	}
	sort.Slice(meals, func(i, j int) bool { return rank[meals[i].MealType] < rank[meals[j].MealType] })
	return meals, nil
}

type mockMealComponentRepo struct {
	state *menuState
}

func (m *mockMealComponentRepo) Create(_ context.Context, component *models.MealComponent) error {
	component.ID = uuid.New()
	copied := *component
	m.state.components[component.ID] = &copied
	return nil
}

func (m *mockMealComponentRepo) CreateBatch(ctx context.Context, components []*models.MealComponent) error {
	for _, c := range components {
		if err := m.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockMealComponentRepo) ListByMeal(_ context.Context, mealID uuid.UUID) ([]*models.MealComponent, error) {
	var components []*models.MealComponent
	for _, c := range m.state.components {
		if c.MealID == mealID {
			components = append(components, c)
		}
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].OrderPosition < components[j].OrderPosition
	})
	return components, nil
}

func (m *mockMealComponentRepo) UpdateDishName(_ context.Context, componentID uuid.UUID, dishName string) error {
	c, ok := m.state.components[componentID]
	if !ok {
		return fmt.Errorf("meal component %s: %w", componentID, apperrors.ErrNotFound)
	}
	c.DishName = dishName
	return nil
}

type mockChangeRepo struct {
	state *menuState
}

func (m *mockChangeRepo) Create(_ context.Context, change *models.MenuChangeRequest) error {
	change.ID = uuid.New()
	change.CreatedAt = time.Now()
	change.UpdatedAt = change.CreatedAt
	copied := *change
	m.state.changes[change.ID] = &copied
	return nil
}

func (m *mockChangeRepo) GetByID(_ context.Context, changeID uuid.UUID) (*models.MenuChangeRequest, error) {
	return m.state.changes[changeID], nil
}

func (m *mockChangeRepo) GetByIDForUpdate(ctx context.Context, changeID uuid.UUID) (*models.MenuChangeRequest, error) {
	return m.GetByID(ctx, changeID)
}

func (m *mockChangeRepo) UpdateDecision(_ context.Context, change *models.MenuChangeRequest) error {
	stored, ok := m.state.changes[change.ID]
	if !ok {
		return fmt.Errorf("change request %s: %w", change.ID, apperrors.ErrNotFound)
	}
	stored.Status = change.Status
	stored.DecidedBy = change.DecidedBy
	stored.DecidedAt = change.DecidedAt
	stored.NotesFromDecider = change.NotesFromDecider
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *mockChangeRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]*models.MenuChangeRequest, error) {
	var changes []*models.MenuChangeRequest
	for _, c := range m.state.changes {
		if !c.DayDate.Before(from) && c.DayDate.Before(to) {
			changes = append(changes, c)
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].CreatedAt.After(changes[j].CreatedAt) })
	return changes, nil
}

func (m *mockChangeRepo) ListByStatus(_ context.Context, status string, _ int) ([]*models.MenuChangeRequest, error) {
	var changes []*models.MenuChangeRequest
	for _, c := range m.state.changes {
		if c.Status == status {
			changes = append(changes, c)
		}
	}
	return changes, nil
}

// fakeHolidays is a canned holiday calendar.
type fakeHolidays struct {
	dates map[string]bool
	err   error
}

func (f *fakeHolidays) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.dates[date.Format("2006-01-02")], nil
}

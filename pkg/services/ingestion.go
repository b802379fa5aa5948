package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LuisRz1/pluginProvcalApp/pkg/database"
	"github.com/LuisRz1/pluginProvcalApp/pkg/holiday"
	"github.com/LuisRz1/pluginProvcalApp/pkg/models"
	"github.com/LuisRz1/pluginProvcalApp/pkg/repositories"
	"github.com/LuisRz1/pluginProvcalApp/pkg/workbook"
)

// Ingest result statuses.
const (
	IngestStatusOK       = "ok"
	IngestStatusConflict = "conflict"
)

// IngestOptions controls one ingestion run.
type IngestOptions struct {
	Year  int
	Month int
	// Force confirms overwriting a month that already exists, draft or
	// active. Without it an existing month is reported as a conflict and
	// nothing is written.
	Force bool
}

// IngestResult summarizes what an ingestion run did. On a conflict the
// Preview field carries what a confirmed overwrite would persist.
type IngestResult struct {
	Status        string       `json:"status"`
	Message       string       `json:"message,omitempty"`
	MenuID        uuid.UUID    `json:"menu_id,omitempty"`
	WeeksImported int          `json:"weeks_imported"`
	DaysImported  int          `json:"days_imported"`
	SkippedDates  []string     `json:"skipped_dates,omitempty"`
	Preview       *MenuPreview `json:"preview,omitempty"`
}

// MenuPreview is the dry-run view of a workbook: what an ingestion would
// persist, without touching the database.
type MenuPreview struct {
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	Weeks        []WeekPreview `json:"weeks"`
	SkippedDates []string      `json:"skipped_dates,omitempty"`
	DroppedDays  int           `json:"dropped_days"`
}

// WeekPreview is one sheet's contribution to the preview.
type WeekPreview struct {
	WeekNumber int          `json:"week_number"`
	SheetName  string       `json:"sheet_name"`
	Days       []DayPreview `json:"days"`
}

// DayPreview is one day's contribution to the preview.
type DayPreview struct {
	Date       string   `json:"date"`
	DayOfWeek  string   `json:"day_of_week"`
	MealTypes  []string `json:"meal_types"`
	Components int      `json:"components"`
}

// MenuIngestionService turns an uploaded workbook into the normalized
// menu tree for one month.
type MenuIngestionService interface {
	// Preview parses the workbook and reports what would be persisted.
	Preview(ctx context.Context, filename string, data []byte, year, month int) (*MenuPreview, error)

	// Ingest parses the workbook and rebuilds the month from it. Each
	// sheet is one week and is replaced atomically.
	Ingest(ctx context.Context, filename string, data []byte, opts IngestOptions) (*IngestResult, error)
}

type menuIngestionService struct {
	db                database.TxRunner
	monthlyRepo       repositories.MonthlyMenuRepository
	weeklyRepo        repositories.WeeklyMenuRepository
	dailyRepo         repositories.DailyMenuRepository
	mealRepo          repositories.MealRepository
	componentRepo     repositories.MealComponentRepository
	componentTypeRepo repositories.ComponentTypeRepository
	holidays          holiday.Checker
	logger            *zap.Logger
}

// MenuIngestionDeps contains dependencies for MenuIngestionService.
type MenuIngestionDeps struct {
	DB                database.TxRunner
	MonthlyRepo       repositories.MonthlyMenuRepository
	WeeklyRepo        repositories.WeeklyMenuRepository
	DailyRepo         repositories.DailyMenuRepository
	MealRepo          repositories.MealRepository
	ComponentRepo     repositories.MealComponentRepository
	ComponentTypeRepo repositories.ComponentTypeRepository
	Holidays          holiday.Checker
	Logger            *zap.Logger
}

// NewMenuIngestionService creates a new MenuIngestionService.
func NewMenuIngestionService(deps *MenuIngestionDeps) MenuIngestionService {
	return &menuIngestionService{
		db:                deps.DB,
		monthlyRepo:       deps.MonthlyRepo,
		weeklyRepo:        deps.WeeklyRepo,
		dailyRepo:         deps.DailyRepo,
		mealRepo:          deps.MealRepo,
		componentRepo:     deps.ComponentRepo,
		componentTypeRepo: deps.ComponentTypeRepo,
		holidays:          deps.Holidays,
		logger:            deps.Logger,
	}
}

var _ MenuIngestionService = (*menuIngestionService)(nil)

// scannedSheet pairs a sheet with its month-filtered days.
type scannedSheet struct {
	name string
	days []workbook.ScannedDay
}

func (s *menuIngestionService) Preview(ctx context.Context, filename string, data []byte, year, month int) (*MenuPreview, error) {
	sheets, skipped, dropped, err := s.scanWorkbook(filename, data, year, month)
	if err != nil {
		return nil, err
	}

	return buildPreview(year, month, sheets, skipped, dropped), nil
}

func buildPreview(year, month int, sheets []scannedSheet, skipped []string, dropped int) *MenuPreview {
	preview := &MenuPreview{
		Year:         year,
		Month:        month,
		SkippedDates: skipped,
		DroppedDays:  dropped,
	}

	for i, sheet := range sheets {
		week := WeekPreview{WeekNumber: i + 1, SheetName: sheet.name}
		for _, day := range sheet.days {
			dp := DayPreview{
				Date:      day.Date.Format("2006-01-02"),
				DayOfWeek: day.DayName,
			}
			for _, meal := range day.Meals {
				dp.MealTypes = append(dp.MealTypes, meal.MealType)
				dp.Components += len(meal.Components)
			}
			week.Days = append(week.Days, dp)
		}
		preview.Weeks = append(preview.Weeks, week)
	}

	return preview
}

func (s *menuIngestionService) Ingest(ctx context.Context, filename string, data []byte, opts IngestOptions) (*IngestResult, error) {
	sheets, skipped, dropped, err := s.scanWorkbook(filename, data, opts.Year, opts.Month)
	if err != nil {
		return nil, err
	}

	// Any existing month, draft included, needs explicit confirmation
	// before it is overwritten.
	existing, err := s.monthlyRepo.FindByYearMonth(ctx, opts.Year, opts.Month)
	if err != nil {
		return nil, err
	}
	if existing != nil && !opts.Force {
		return &IngestResult{
			Status: IngestStatusConflict,
			Message: fmt.Sprintf("a menu for %04d-%02d already exists; overwrite must be confirmed",
				opts.Year, opts.Month),
			MenuID:       existing.ID,
			SkippedDates: skipped,
			Preview:      buildPreview(opts.Year, opts.Month, sheets, skipped, dropped),
		}, nil
	}

	menu := &models.MonthlyMenu{
		Year:           opts.Year,
		Month:          opts.Month,
		Status:         models.MenuStatusDraft,
		SourceFilename: filename,
	}
	if err := s.monthlyRepo.Upsert(ctx, menu); err != nil {
		return nil, err
	}

	// The month is rebuilt wholesale: stale weeks from a previous upload
	// must not survive a shorter corrected workbook.
	if err := s.weeklyRepo.DeleteByMonthlyMenu(ctx, menu.ID); err != nil {
		return nil, err
	}

	resolver := NewComponentResolver(s.componentTypeRepo)

	daysImported := 0
	for i, sheet := range sheets {
		weekNumber := i + 1
		err := s.db.InTx(ctx, func(txCtx context.Context) error {
			n, err := s.rebuildWeek(txCtx, menu.ID, weekNumber, sheet, resolver)
			if err != nil {
				return err
			}
			daysImported += n
			return nil
		})
		if err != nil {
			// The month stays in draft; a corrected upload re-runs it.
			return nil, fmt.Errorf("failed to rebuild week %d (sheet %q): %w", weekNumber, sheet.name, err)
		}
	}

	if err := s.monthlyRepo.SetStatus(ctx, menu.ID, models.MenuStatusActive); err != nil {
		return nil, err
	}

	s.logger.Info("menu ingested",
		zap.Int("year", opts.Year),
		zap.Int("month", opts.Month),
		zap.Int("weeks", len(sheets)),
		zap.Int("days", daysImported))

	return &IngestResult{
		Status:        IngestStatusOK,
		MenuID:        menu.ID,
		WeeksImported: len(sheets),
		DaysImported:  daysImported,
		SkippedDates:  skipped,
	}, nil
}

// scanWorkbook parses the upload, scans every sheet and keeps only days
// inside the target month. A sheet with no recognizable layout fails the
// whole scan; the error names the offending sheet so the uploader can fix
// the file.
func (s *menuIngestionService) scanWorkbook(filename string, data []byte, year, month int) ([]scannedSheet, []string, int, error) {
	wb, err := workbook.Read(filename, data)
	if err != nil {
		return nil, nil, 0, err
	}

	var sheets []scannedSheet
	var skipped []string
	dropped := 0

	for _, sheet := range wb.Sheets {
		scan, err := workbook.ScanSheet(sheet.Name, sheet.Grid)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to scan sheet %q: %w", sheet.Name, err)
		}

		var days []workbook.ScannedDay
		for _, day := range scan.Days {
			if day.Date.Year() != year || int(day.Date.Month()) != month {
				s.logger.Warn("dropping day outside target month",
					zap.String("sheet", sheet.Name),
					zap.String("date", day.Date.Format("2006-01-02")))
				dropped++
				continue
			}
			days = append(days, day)
		}

		skipped = append(skipped, scan.SkippedDates...)
		sheets = append(sheets, scannedSheet{name: sheet.Name, days: days})
	}

	if len(sheets) == 0 {
		return nil, nil, 0, fmt.Errorf("workbook %q has no sheets", filename)
	}
	return sheets, skipped, dropped, nil
}

// rebuildWeek replaces one week's subtree inside an open transaction and
// returns the number of days written.
func (s *menuIngestionService) rebuildWeek(ctx context.Context, monthlyMenuID uuid.UUID, weekNumber int, sheet scannedSheet, resolver ComponentResolver) (int, error) {
	week := &models.WeeklyMenu{
		MonthlyMenuID: monthlyMenuID,
		WeekNumber:    weekNumber,
		Title:         sheet.name,
	}
	if err := s.weeklyRepo.Upsert(ctx, week); err != nil {
		return 0, err
	}

	days := make([]*models.DailyMenu, 0, len(sheet.days))
	for _, sd := range sheet.days {
		days = append(days, &models.DailyMenu{
			Date:           sd.Date,
			DayOfWeek:      sd.DayName,
			IsHoliday:      s.isHoliday(ctx, sd.Date),
			NutritionFlags: nutritionFlags(sd),
		})
	}

	if err := s.dailyRepo.ReplaceForWeek(ctx, week.ID, days); err != nil {
		return 0, err
	}

	for i, sd := range sheet.days {
		if err := s.persistMeals(ctx, days[i].ID, sd, resolver); err != nil {
			return 0, err
		}
	}

	return len(days), nil
}

func (s *menuIngestionService) persistMeals(ctx context.Context, dailyMenuID uuid.UUID, day workbook.ScannedDay, resolver ComponentResolver) error {
	meals := make([]*models.Meal, 0, len(day.Meals))
	for _, sm := range day.Meals {
		meals = append(meals, &models.Meal{
			DailyMenuID: dailyMenuID,
			MealType:    sm.MealType,
			TotalKcal:   sm.TotalKcal,
		})
	}
	if err := s.mealRepo.CreateBatch(ctx, meals); err != nil {
		return err
	}

	var components []*models.MealComponent
	for i, sm := range day.Meals {
		for pos, sc := range sm.Components {
			ct, err := resolver.Resolve(ctx, sc.Label)
			if err != nil {
				return err
			}
			components = append(components, &models.MealComponent{
				MealID:          meals[i].ID,
				ComponentTypeID: ct.ID,
				DishName:        sc.DishName,
				Calories:        sc.Calories,
				OrderPosition:   pos + 1,
			})
		}
	}

	return s.componentRepo.CreateBatch(ctx, components)
}

// isHoliday degrades to false when the upstream calendar is unavailable.
// Ingestion must not fail because a holiday API is down.
func (s *menuIngestionService) isHoliday(ctx context.Context, date time.Time) bool {
	if s.holidays == nil {
		return false
	}
	holiday, err := s.holidays.IsHoliday(ctx, date)
	if err != nil {
		s.logger.Warn("holiday lookup failed, assuming working day",
			zap.String("date", date.Format("2006-01-02")),
			zap.Error(err))
		return false
	}
	return holiday
}

// nutritionFlags marks the meals a day is missing so review screens can
// surface incomplete days.
func nutritionFlags(day workbook.ScannedDay) map[string]string {
	present := make(map[string]bool, len(day.Meals))
	for _, m := range day.Meals {
		present[m.MealType] = true
	}

	flags := map[string]string{}
	for _, mealType := range models.MealTypes {
		if !present[mealType] {
			flags["missing_"+mealType] = "true"
		}
	}
	return flags
}

package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
	"github.com/mikaelzzzz/OnboardingKarol/app/repository"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/contractdate"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/normalize"
)

const (
	DefaultBatchSize = 50
	MaxBatchSize     = 500
)

// InputError points at the record of a batch that could not be parsed.
type InputError struct {
	Index int
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Record is the API view of a contract schedule.
type Record struct {
	UUID            string   `json:"uuid"`
	Email           string   `json:"email,omitempty"`
	StartDate       string   `json:"start_date"`
	DurationMonths  int      `json:"duration_months"`
	ClassWeekday    string   `json:"class_weekday"`
	Status          string   `json:"status"`
	EndDate         string   `json:"end_date,omitempty"`
	ExtraDays       int      `json:"extra_days"`
	Blackouts       []string `json:"blackouts"`
	Holidays        []string `json:"holidays"`
	CalendarVersion string   `json:"calendar_version,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// FinalizeReport summarizes one finalize batch.
type FinalizeReport struct {
	Processed int      `json:"processed"`
	Finalized int      `json:"finalized"`
	Failed    int      `json:"failed"`
	Remaining int64    `json:"remaining"`
	Results   []Record `json:"results"`
}

// Service computes end dates for contracts queued in the secondary store.
type Service struct {
	repo     repository.ContractScheduleRepository
	calendar *contractdate.Calendar
	now      func() time.Time
}

func NewService(repo repository.ContractScheduleRepository) *Service {
	return &Service{repo: repo, calendar: contractdate.Default(), now: time.Now}
}

// Enqueue validates and stores a batch of pending records. Nothing is stored
// if any record is invalid.
func (s *Service) Enqueue(inputs []models.ContractScheduleInput) ([]Record, error) {
	rows := make([]*models.ContractSchedule, 0, len(inputs))
	for i, in := range inputs {
		start, ok := normalize.ParseDate(in.StartDate)
		if !ok {
			return nil, &InputError{Index: i, Err: fmt.Errorf("start_date %q: %w", in.StartDate, normalize.ErrInvalidDate)}
		}
		wd, err := normalize.ParseWeekday(in.ClassWeekday)
		if err != nil {
			return nil, &InputError{Index: i, Err: err}
		}
		rows = append(rows, &models.ContractSchedule{
			UUID:           uuid.NewString(),
			Email:          normalize.NormalizeEmail(in.Email),
			StartDate:      *start,
			DurationMonths: in.DurationMonths,
			ClassWeekday:   int(wd),
			Status:         models.ScheduleStatusPending,
		})
	}

	if err := s.repo.Create(rows); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRecord(r))
	}
	return out, nil
}

// FinalizePending computes up to limit pending records. A record that fails
// to save stays pending and is reported with its error.
func (s *Service) FinalizePending(limit int) (*FinalizeReport, error) {
	limit = ClampLimit(limit)
	pending, err := s.repo.ListPending(limit)
	if err != nil {
		return nil, err
	}

	report := &FinalizeReport{Results: make([]Record, 0, len(pending))}
	for i := range pending {
		row := &pending[i]
		res := s.calendar.ComputeEndDate(row.StartDate, row.DurationMonths, time.Weekday(row.ClassWeekday))

		end := res.End
		row.EndDate = &end
		row.ExtraDays = res.ExtraDays
		row.CalendarVersion = res.Version
		row.SetLabels(res.Blackouts, res.Holidays)

		report.Processed++
		if err := s.repo.Finalize(row, s.now()); err != nil {
			report.Failed++
			rec := toRecord(row)
			rec.Error = err.Error()
			report.Results = append(report.Results, rec)
			log.Errorf("[ContractDate] Failed to finalize %s: %v", row.UUID, err)
			continue
		}
		report.Finalized++
		report.Results = append(report.Results, toRecord(row))
	}

	remaining, err := s.repo.CountByStatus(models.ScheduleStatusPending)
	if err != nil {
		log.Warnf("[ContractDate] Could not count pending records: %v", err)
	}
	report.Remaining = remaining

	log.Infof("[ContractDate] Finalized %d/%d records, %d pending", report.Finalized, report.Processed, remaining)
	return report, nil
}

// Preview computes an end date without storing anything.
func (s *Service) Preview(startRaw string, months int, weekdayRaw string) (*Record, error) {
	start, ok := normalize.ParseDate(startRaw)
	if !ok {
		return nil, fmt.Errorf("start %q: %w", startRaw, normalize.ErrInvalidDate)
	}
	wd, err := normalize.ParseWeekday(weekdayRaw)
	if err != nil {
		return nil, err
	}

	res := s.calendar.ComputeEndDate(*start, months, wd)
	return &Record{
		StartDate:       normalize.FormatDate(start),
		DurationMonths:  months,
		ClassWeekday:    weekdayName(wd),
		EndDate:         res.End.Format(time.DateOnly),
		ExtraDays:       res.ExtraDays,
		Blackouts:       res.Blackouts,
		Holidays:        res.Holidays,
		CalendarVersion: res.Version,
	}, nil
}

// ClampLimit applies the default and the maximum batch size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultBatchSize
	case limit > MaxBatchSize:
		return MaxBatchSize
	default:
		return limit
	}
}

func toRecord(s *models.ContractSchedule) Record {
	r := Record{
		UUID:            s.UUID,
		Email:           s.Email,
		StartDate:       s.StartDate.Format(time.DateOnly),
		DurationMonths:  s.DurationMonths,
		ClassWeekday:    weekdayName(time.Weekday(s.ClassWeekday)),
		Status:          s.Status,
		ExtraDays:       s.ExtraDays,
		Blackouts:       s.Blackouts(),
		Holidays:        s.Holidays(),
		CalendarVersion: s.CalendarVersion,
	}
	if s.EndDate != nil {
		r.EndDate = s.EndDate.Format(time.DateOnly)
	}
	return r
}

func weekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

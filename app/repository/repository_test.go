package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WebhookEvent{}, &models.ContractSchedule{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestWebhookEventRepository_CreateIfNotExists(t *testing.T) {
	repo := NewFactory(newTestDB(t)).GetWebhookEventRepository()

	first := &models.WebhookEvent{Provider: models.ProviderZapSign, Token: "doc-1", Status: "signed", PayloadJSON: `{}`}
	created, stored, err := repo.CreateIfNotExists(first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, stored.ID)
	assert.False(t, stored.Completed())

	again := &models.WebhookEvent{Provider: models.ProviderZapSign, Token: "doc-1", Status: "signed", PayloadJSON: `{"x":1}`}
	created, dup, err := repo.CreateIfNotExists(again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, dup.ID)
	assert.Equal(t, `{}`, dup.PayloadJSON, "the first delivery is kept")
}

func TestWebhookEventRepository_ProcessingLifecycle(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t))

	_, ev, err := repo.CreateIfNotExists(&models.WebhookEvent{Provider: models.ProviderZapSign, Token: "doc-2", Status: "signed", PayloadJSON: `{}`})
	require.NoError(t, err)

	require.NoError(t, repo.StartAttempt(ev.ID))
	require.NoError(t, repo.SetArchiveKey(ev.ID, "contracts/2025/07/doc-2.json"))
	require.NoError(t, repo.MarkProcessed(ev.ID, "failed_at_billed", "billed: asaas down"))

	got, err := repo.GetByToken(models.ProviderZapSign, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "contracts/2025/07/doc-2.json", got.ArchiveKey)
	assert.Equal(t, "failed_at_billed", got.Terminal)
	assert.NotNil(t, got.ProcessedAt)
	assert.False(t, got.Completed())

	require.NoError(t, repo.StartAttempt(ev.ID))
	got, err = repo.GetByToken(models.ProviderZapSign, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
	assert.Nil(t, got.ProcessedAt, "a new attempt clears the previous result")

	require.NoError(t, repo.MarkProcessed(ev.ID, "done", ""))
	got, err = repo.GetByToken(models.ProviderZapSign, "doc-2")
	require.NoError(t, err)
	assert.True(t, got.Completed())
}

func TestContractScheduleRepository_PendingAndFinalize(t *testing.T) {
	repo := NewContractScheduleRepository(newTestDB(t))
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	var batch []*models.ContractSchedule
	for i := 0; i < 3; i++ {
		batch = append(batch, &models.ContractSchedule{
			UUID:           fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i),
			StartDate:      start,
			DurationMonths: 1,
			ClassWeekday:   int(time.Monday),
			Status:         models.ScheduleStatusPending,
		})
	}
	require.NoError(t, repo.Create(batch))

	pending, err := repo.ListPending(2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, batch[0].ID, pending[0].ID)

	end := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)
	s := pending[0]
	s.EndDate = &end
	s.ExtraDays = 25
	s.CalendarVersion = "2025.2"
	s.SetLabels([]string{"Férias de julho 2025 (18 dias)"}, nil)
	require.NoError(t, repo.Finalize(&s, time.Now()))
	assert.Equal(t, models.ScheduleStatusFinalized, s.Status)

	assert.ErrorIs(t, repo.Finalize(&s, time.Now()), gorm.ErrRecordNotFound, "finalized records are not rewritten")

	stored, err := repo.GetByUUID(s.UUID)
	require.NoError(t, err)
	assert.Equal(t, 25, stored.ExtraDays)
	assert.Equal(t, []string{"Férias de julho 2025 (18 dias)"}, stored.Blackouts())
	assert.Equal(t, []string{}, stored.Holidays())
	require.NotNil(t, stored.EndDate)
	assert.Equal(t, "2025-08-25", stored.EndDate.Format("2006-01-02"))

	n, err := repo.CountByStatus(models.ScheduleStatusPending)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

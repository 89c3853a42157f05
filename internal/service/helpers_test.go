package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stretchr/testify/require"

	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/pkg/ai"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.DiaryEntry{}, &models.ActivityRecord{}, &models.ArtifactUpload{}))
	return db
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type fakeInvalidator struct {
	calls int64
}

func (f *fakeInvalidator) InvalidateSnapshot(context.Context) error {
	atomic.AddInt64(&f.calls, 1)
	return nil
}

func (f *fakeInvalidator) count() int64 {
	return atomic.LoadInt64(&f.calls)
}

type fakeRecorder struct {
	entries []ActivityEntry
}

func (f *fakeRecorder) Record(_ context.Context, entry ActivityEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeSuggester struct {
	suggestion string
	reply      string
	err        error

	lastInput      ai.SuggestionInput
	lastTranscript []ai.ChatTurn
	lastMessage    string
}

func (f *fakeSuggester) SuggestFeedback(_ context.Context, input ai.SuggestionInput) (string, error) {
	f.lastInput = input
	return f.suggestion, f.err
}

func (f *fakeSuggester) Chat(_ context.Context, transcript []ai.ChatTurn, message string) (string, error) {
	f.lastTranscript = transcript
	f.lastMessage = message
	return f.reply, f.err
}

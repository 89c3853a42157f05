package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mathmood/diary-api/internal/aggregate"
	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/handler"
	"github.com/mathmood/diary-api/internal/normalize"
	"github.com/mathmood/diary-api/internal/service"
)

type stubMonitorService struct {
	snapshot  dto.MonitorSnapshotResponse
	dateErr   error
	entry    dto.DiaryEntryResponse
	display  normalize.Display
	entryErr error
}

func (s *stubMonitorService) InvalidateSnapshot(context.Context) error { return nil }

func (s *stubMonitorService) Snapshot(context.Context) (dto.MonitorSnapshotResponse, error) {
	return s.snapshot, nil
}

func (s *stubMonitorService) Dates(context.Context) (dto.DateListResponse, error) {
	return dto.DateListResponse{Days: []dto.DateSummary{{Key: "2026-07-03", Entries: 2}}}, nil
}

func (s *stubMonitorService) DateDetail(context.Context, string) (aggregate.DateBucket, error) {
	return aggregate.DateBucket{}, s.dateErr
}

func (s *stubMonitorService) Classes(context.Context) (aggregate.ClassIndex, error) {
	return aggregate.ClassIndex{}, nil
}

func (s *stubMonitorService) ClassDetail(context.Context, string) (aggregate.ClassBucket, error) {
	return aggregate.ClassBucket{}, nil
}

func (s *stubMonitorService) Unreviewed(context.Context, string, string) ([]aggregate.UnreviewedRow, error) {
	return nil, nil
}

func (s *stubMonitorService) Ranking(context.Context) ([]aggregate.RankingRow, error) {
	return nil, nil
}

func (s *stubMonitorService) EntryDetail(context.Context, string) (dto.DiaryEntryResponse, normalize.Display, error) {
	return s.entry, s.display, s.entryErr
}

type stubReviewService struct {
	actorID string
	entryID string
	result  dto.SaveFeedbackResponse
	err     error
}

func (s *stubReviewService) SaveFeedback(_ context.Context, actorID, entryID string, _ dto.SaveFeedbackRequest) (dto.SaveFeedbackResponse, error) {
	s.actorID = actorID
	s.entryID = entryID
	return s.result, s.err
}

type stubSuggestionService struct {
	err error
}

func (s *stubSuggestionService) SuggestFeedback(context.Context, string) (dto.SuggestFeedbackResponse, error) {
	if s.err != nil {
		return dto.SuggestFeedbackResponse{}, s.err
	}
	return dto.SuggestFeedbackResponse{Suggestion: "Nice work today!"}, nil
}

type stubActivityService struct{}

func (stubActivityService) Record(context.Context, service.ActivityEntry) error { return nil }

func (stubActivityService) List(context.Context, dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	return dto.ActivityListResponse{}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newMonitorApp(monitor *stubMonitorService, review *stubReviewService, suggest *stubSuggestionService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "op-1")
		return c.Next()
	})
	h := handler.NewMonitorHandler(monitor, review, suggest, stubActivityService{}, zerolog.Nop())
	h.Register(app.Group("/api/monitor"))
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestMonitorHandlerSnapshot(t *testing.T) {
	monitor := &stubMonitorService{
		snapshot: dto.MonitorSnapshotResponse{GeneratedAt: time.Now(), CacheHit: true},
	}
	app := newMonitorApp(monitor, &stubReviewService{}, &stubSuggestionService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/monitor/snapshot", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)

	var body dto.MonitorSnapshotResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.True(t, body.CacheHit)
}

func TestMonitorHandlerDateDetailNotFound(t *testing.T) {
	monitor := &stubMonitorService{dateErr: service.ErrEntryNotFound}
	app := newMonitorApp(monitor, &stubReviewService{}, &stubSuggestionService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/monitor/dates/2020-01-01", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.False(t, env.Success)
}

func TestMonitorHandlerSaveFeedbackUsesAuthenticatedActor(t *testing.T) {
	review := &stubReviewService{result: dto.SaveFeedbackResponse{TokenGranted: true}}
	app := newMonitorApp(&stubMonitorService{}, review, &stubSuggestionService{})

	payload := bytes.NewBufferString(`{"feedback":"Great reasoning!","grant_token":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/monitor/entries/entry-1/feedback", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "op-1", review.actorID)
	require.Equal(t, "entry-1", review.entryID)
}

func TestMonitorHandlerSaveFeedbackNotFound(t *testing.T) {
	review := &stubReviewService{err: service.ErrEntryNotFound}
	app := newMonitorApp(&stubMonitorService{}, review, &stubSuggestionService{})

	payload := bytes.NewBufferString(`{"feedback":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/monitor/entries/missing/feedback", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMonitorHandlerSuggestFeedbackUpstreamFailure(t *testing.T) {
	suggest := &stubSuggestionService{err: service.ErrSuggestionUnavailable}
	app := newMonitorApp(&stubMonitorService{}, &stubReviewService{}, suggest)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/monitor/entries/entry-1/suggest-feedback", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

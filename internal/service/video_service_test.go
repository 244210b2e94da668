package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// --- Mock VideoRepository ---

type mockVideoRepo struct {
	mock.Mock
}

func (m *mockVideoRepo) ListAll() ([]*domain.Video, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Video), args.Error(1)
}

func (m *mockVideoRepo) FindByVideoID(videoID string) (*domain.Video, error) {
	args := m.Called(videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *mockVideoRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockVideoRepo) EarliestUploadDate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockVideoRepo) LatestUploadDate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockVideoRepo) LatestVideo() (*domain.Video, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *mockVideoRepo) Upsert(videos []*domain.Video) ([]string, error) {
	args := m.Called(videos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockVideoRepo) ReplaceAll(videos []*domain.Video) error {
	return m.Called(videos).Error(0)
}

// --- Mock ChannelFetcher ---

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchVideos(ctx context.Context) ([]*domain.Video, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Video), args.Error(1)
}

func newVideoServiceAt(repo *mockVideoRepo, fetcher *mockFetcher, now time.Time) *videoService {
	return &videoService{
		videoRepo: repo,
		fetcher:   fetcher,
		now:       func() time.Time { return now },
	}
}

func TestStatusDaysRunningFromFirstUpload(t *testing.T) {
	repo := &mockVideoRepo{}
	now := time.Date(2024, 4, 11, 12, 0, 0, 0, time.UTC)
	svc := newVideoServiceAt(repo, nil, now)

	repo.On("Count").Return(int64(90), nil)
	repo.On("EarliestUploadDate").Return("20240101", nil)
	repo.On("LatestVideo").Return(&domain.Video{VideoID: "v90", Title: "Day 90", UploadDate: "20240410"}, nil)

	status, err := svc.Status(context.Background())
	assert.NoError(t, err)
	// Jan 1 through Apr 11 inclusive is 102 days
	assert.Equal(t, 102, status.DaysRunning)
	assert.Equal(t, 90, status.VideoCount)
	assert.Equal(t, 90, status.TotalVideos)
	if assert.NotNil(t, status.LatestVideo) {
		assert.Equal(t, "20240410", status.LatestVideo.UploadDate)
		assert.Equal(t, "Day 90", status.LatestVideo.Title)
	}
}

func TestStatusDaysRunningFallsBackToCount(t *testing.T) {
	repo := &mockVideoRepo{}
	svc := newVideoServiceAt(repo, nil, time.Now())

	repo.On("Count").Return(int64(42), nil)
	repo.On("EarliestUploadDate").Return("", common.ErrVideoNotFound)
	repo.On("LatestVideo").Return(nil, common.ErrVideoNotFound)

	status, err := svc.Status(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, status.DaysRunning)
	assert.Nil(t, status.LatestVideo)
}

func TestPullMergesNewVideos(t *testing.T) {
	repo := &mockVideoRepo{}
	fetcher := &mockFetcher{}
	svc := newVideoServiceAt(repo, fetcher, time.Now())

	fetched := []*domain.Video{
		{VideoID: "a", UploadDate: "20240101"},
		{VideoID: "b", UploadDate: "20240102"},
	}
	fetcher.On("FetchVideos", mock.Anything).Return(fetched, nil)
	repo.On("Upsert", fetched).Return([]string{"b"}, nil)
	repo.On("Count").Return(int64(2), nil)

	result, err := svc.Pull(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.NewVideos)
	assert.Equal(t, []string{"b"}, result.NewVideoIDs)
	assert.Equal(t, 2, result.TotalVideos)
}

func TestPullPreservesDatabaseOnFetchFailure(t *testing.T) {
	repo := &mockVideoRepo{}
	fetcher := &mockFetcher{}
	svc := newVideoServiceAt(repo, fetcher, time.Now())

	fetcher.On("FetchVideos", mock.Anything).Return(nil, errors.New("channel down"))
	repo.On("Count").Return(int64(500), nil)

	result, err := svc.Pull(context.Background())
	assert.NoError(t, err)
	assert.Contains(t, result.Message, "database preserved")
	assert.Equal(t, 500, result.TotalVideos)
	assert.Zero(t, result.NewVideos)
	repo.AssertNotCalled(t, "Upsert", mock.Anything)
	repo.AssertNotCalled(t, "ReplaceAll", mock.Anything)
}

func TestImportLegacyFile(t *testing.T) {
	repo := &mockVideoRepo{}
	svc := newVideoServiceAt(repo, nil, time.Now())

	path := filepath.Join(t.TempDir(), "videos.json")
	data := `[
		{"id":"v1","url":"https://t/1","title":"Day 1","upload_date":"20240101","view_count":10,"like_count":2},
		{"id":"","title":"missing id is skipped"},
		{"id":"v2","url":"https://t/2","title":"Day 2","upload_date":"20240102"}
	]`
	assert.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	repo.On("ReplaceAll", mock.MatchedBy(func(videos []*domain.Video) bool {
		return len(videos) == 2 && videos[0].VideoID == "v1" && videos[1].VideoID == "v2"
	})).Return(nil)

	n, err := svc.ImportLegacyFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	repo.AssertExpectations(t)
}

func TestImportLegacyFileBadJSON(t *testing.T) {
	repo := &mockVideoRepo{}
	svc := newVideoServiceAt(repo, nil, time.Now())

	path := filepath.Join(t.TempDir(), "broken.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := svc.ImportLegacyFile(path)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "ReplaceAll", mock.Anything)
}

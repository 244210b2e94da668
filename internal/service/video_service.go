package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/repository"
	"github.com/minigolfeveryday/mged-site/pkg/cache"
	"github.com/minigolfeveryday/mged-site/pkg/logger"
)

// ChannelFetcher pulls the current video list from the channel
type ChannelFetcher interface {
	FetchVideos(ctx context.Context) ([]*domain.Video, error)
}

// VideoService archive business logic
type VideoService interface {
	List(ctx context.Context) ([]*domain.Video, error)
	Status(ctx context.Context) (*domain.SiteStatus, error)
	Pull(ctx context.Context) (*domain.PullResult, error)
	ImportLegacyFile(path string) (int, error)
}

type videoService struct {
	videoRepo repository.VideoRepository
	fetcher   ChannelFetcher
	cache     cache.Service
	now       func() time.Time
}

// NewVideoService creates a new VideoService
func NewVideoService(videoRepo repository.VideoRepository, fetcher ChannelFetcher, cacheSvc cache.Service) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		fetcher:   fetcher,
		cache:     cacheSvc,
		now:       time.Now,
	}
}

// List returns the whole archive newest first, cached briefly
func (s *videoService) List(ctx context.Context) ([]*domain.Video, error) {
	if s.cache != nil {
		if raw, err := s.cache.GetVideos(ctx); err == nil {
			var videos []*domain.Video
			if err := decodeJSON(raw, &videos); err == nil {
				return videos, nil
			}
		}
	}

	videos, err := s.videoRepo.ListAll()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetVideos(ctx, videos); err != nil {
			logger.Warn("failed to cache video list: %v", err)
		}
	}
	return videos, nil
}

// Status builds the stats block. The streak length comes from the first
// upload date when one exists, else the raw count stands in.
func (s *videoService) Status(ctx context.Context) (*domain.SiteStatus, error) {
	if s.cache != nil {
		if raw, err := s.cache.GetStatus(ctx); err == nil {
			var status domain.SiteStatus
			if err := decodeJSON(raw, &status); err == nil {
				return &status, nil
			}
		}
	}

	count, err := s.videoRepo.Count()
	if err != nil {
		return nil, err
	}

	daysRunning := int(count)
	if earliest, err := s.videoRepo.EarliestUploadDate(); err == nil {
		if first, perr := time.Parse("20060102", earliest); perr == nil {
			daysRunning = int(s.now().UTC().Sub(first).Hours()/24) + 1
		}
	}

	var latest *domain.Video
	if v, err := s.videoRepo.LatestVideo(); err == nil {
		latest = v
	}

	status := &domain.SiteStatus{
		VideoCount:  int(count),
		TotalVideos: int(count),
		DaysRunning: daysRunning,
		LatestVideo: latest,
		LastUpdated: s.now().UTC().Format(time.RFC3339),
	}

	if s.cache != nil {
		if err := s.cache.SetStatus(ctx, status); err != nil {
			logger.Warn("failed to cache status: %v", err)
		}
	}
	return status, nil
}

// Pull refreshes the archive from the channel. A fetch failure leaves
// the stored archive untouched and reports it rather than erroring,
// matching how the nightly update has always behaved.
func (s *videoService) Pull(ctx context.Context) (*domain.PullResult, error) {
	fetched, err := s.fetcher.FetchVideos(ctx)
	if err != nil {
		logger.Warn("channel fetch failed, keeping stored archive: %v", err)
		count, cerr := s.videoRepo.Count()
		if cerr != nil {
			return nil, cerr
		}
		return &domain.PullResult{
			Message:     fmt.Sprintf("fetch failed, database preserved: %v", err),
			TotalVideos: int(count),
		}, nil
	}

	newIDs, err := s.videoRepo.Upsert(fetched)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	total, err := s.videoRepo.Count()
	if err != nil {
		return nil, err
	}

	logger.Info("video pull complete: %d fetched, %d new, %d total", len(fetched), len(newIDs), total)
	return &domain.PullResult{
		Message:     "database updated",
		TotalVideos: int(total),
		NewVideos:   len(newIDs),
		NewVideoIDs: newIDs,
	}, nil
}

// legacyVideo is the shape of the pre-database JSON archive file
type legacyVideo struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	UploadDate string `json:"upload_date"`
	ViewCount  int64  `json:"view_count"`
	LikeCount  int64  `json:"like_count"`
}

// ImportLegacyFile loads the old flat-file archive into the database,
// replacing whatever is stored
func (s *videoService) ImportLegacyFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var entries []legacyVideo
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("parse legacy archive: %w", err)
	}

	videos := make([]*domain.Video, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		videos = append(videos, &domain.Video{
			VideoID:    e.ID,
			URL:        e.URL,
			Title:      e.Title,
			UploadDate: e.UploadDate,
			ViewCount:  e.ViewCount,
			LikeCount:  e.LikeCount,
		})
	}

	if err := s.videoRepo.ReplaceAll(videos); err != nil {
		return 0, err
	}
	s.invalidate(context.Background())
	logger.Info("imported %d videos from %s", len(videos), path)
	return len(videos), nil
}

func (s *videoService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateVideos(ctx); err != nil {
		logger.Warn("failed to invalidate video cache: %v", err)
	}
	if err := s.cache.InvalidateStatus(ctx); err != nil {
		logger.Warn("failed to invalidate status cache: %v", err)
	}
}

func decodeJSON(raw []byte, dest interface{}) error {
	return json.Unmarshal(raw, dest)
}

package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// VideoRepository archive storage for the daily videos
type VideoRepository interface {
	ListAll() ([]*domain.Video, error)
	FindByVideoID(videoID string) (*domain.Video, error)
	Count() (int64, error)
	EarliestUploadDate() (string, error)
	LatestUploadDate() (string, error)
	LatestVideo() (*domain.Video, error)

	// Upsert inserts new videos and refreshes metrics on known ones.
	// It reports the IDs that were not in the archive before.
	Upsert(videos []*domain.Video) ([]string, error)
	ReplaceAll(videos []*domain.Video) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository constructor
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// ListAll returns the whole archive newest first. The upload date is a
// YYYYMMDD string so lexicographic order is chronological order.
func (r *videoRepository) ListAll() ([]*domain.Video, error) {
	var videos []*domain.Video
	if err := r.db.Order("upload_date DESC, video_id DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) FindByVideoID(videoID string) (*domain.Video, error) {
	var video domain.Video
	if err := r.db.Where("video_id = ?", videoID).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrVideoNotFound
		}
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Video{}).Count(&count).Error
	return count, err
}

func (r *videoRepository) EarliestUploadDate() (string, error) {
	return r.boundaryUploadDate("ASC")
}

func (r *videoRepository) LatestUploadDate() (string, error) {
	return r.boundaryUploadDate("DESC")
}

func (r *videoRepository) boundaryUploadDate(dir string) (string, error) {
	var video domain.Video
	err := r.db.Where("upload_date <> ''").
		Order("upload_date " + dir).
		First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", common.ErrVideoNotFound
		}
		return "", err
	}
	return video.UploadDate, nil
}

// LatestVideo returns the most recent dated row, the status endpoint
// serves it whole
func (r *videoRepository) LatestVideo() (*domain.Video, error) {
	var video domain.Video
	err := r.db.Where("upload_date <> ''").
		Order("upload_date DESC, video_id DESC").
		First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrVideoNotFound
		}
		return nil, err
	}
	return &video, nil
}

// Upsert merges a fresh channel pull into the archive inside one
// transaction so a partial failure never loses existing rows
func (r *videoRepository) Upsert(videos []*domain.Video) ([]string, error) {
	var newIDs []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, v := range videos {
			var existing domain.Video
			err := tx.Where("video_id = ?", v.VideoID).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(v).Error; err != nil {
					return err
				}
				newIDs = append(newIDs, v.VideoID)
				continue
			}
			if err != nil {
				return err
			}
			existing.URL = v.URL
			existing.Title = v.Title
			if v.UploadDate != "" {
				existing.UploadDate = v.UploadDate
			}
			existing.ViewCount = v.ViewCount
			existing.LikeCount = v.LikeCount
			existing.CommentCount = v.CommentCount
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newIDs, nil
}

// ReplaceAll swaps the archive wholesale, used by the legacy JSON import
func (r *videoRepository) ReplaceAll(videos []*domain.Video) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Video{}).Error; err != nil {
			return err
		}
		if len(videos) == 0 {
			return nil
		}
		return tx.Create(videos).Error
	})
}

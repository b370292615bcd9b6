package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/SHUBHAMREWA/kanvei.in/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// ImageStore removes images from the hosting provider when catalogue entries
// are deleted. Cleanup is best-effort; callers log failures and move on.
type ImageStore interface {
	// DeleteImages removes the given image URLs from the store.
	DeleteImages(ctx context.Context, urls []string) error
}

// cloudinaryStore implements ImageStore using Cloudinary.
type cloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	logger zerolog.Logger
}

// NewCloudinaryStore creates a Cloudinary-backed image store.
func NewCloudinaryStore(cfg config.CloudinaryConfig, logger zerolog.Logger) (ImageStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cloudinary: %w", err)
	}

	return &cloudinaryStore{
		cld:    cld,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// DeleteImages removes the given image URLs from Cloudinary.
func (s *cloudinaryStore) DeleteImages(ctx context.Context, urls []string) error {
	for _, url := range urls {
		publicID := publicIDFromURL(url)
		if publicID == "" {
			s.logger.Debug().Str("url", url).Msg("not a cloudinary url, skipping")
			continue
		}

		_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to delete image")
			return fmt.Errorf("failed to delete image %s: %w", publicID, err)
		}

		s.logger.Debug().Str("public_id", publicID).Msg("image deleted")
	}

	return nil
}

// publicIDFromURL extracts the Cloudinary public ID from a delivery URL:
// everything after the /upload/ segment, minus the version prefix and file
// extension.
func publicIDFromURL(url string) string {
	_, after, found := strings.Cut(url, "/upload/")
	if !found {
		return ""
	}

	parts := strings.Split(after, "/")
	if len(parts) > 1 && strings.HasPrefix(parts[0], "v") {
		parts = parts[1:]
	}

	publicID := strings.Join(parts, "/")
	if dot := strings.LastIndex(publicID, "."); dot > 0 {
		publicID = publicID[:dot]
	}
	return publicID
}

// nopStore is used when Cloudinary is disabled by configuration.
type nopStore struct {
	logger zerolog.Logger
}

// NewNopStore creates an image store that logs instead of deleting.
func NewNopStore(logger zerolog.Logger) ImageStore {
	return &nopStore{logger: logger.With().Str("component", "cloudinary").Logger()}
}

func (s *nopStore) DeleteImages(ctx context.Context, urls []string) error {
	s.logger.Debug().Int("count", len(urls)).Msg("image store disabled, skipping cleanup")
	return nil
}

package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Storage keeps submission artifacts as raw Cloudinary assets.
type Storage struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary backed artifact store.
func New(cfg Config, logger zerolog.Logger) (*Storage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Storage{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Put uploads the artifact under key and returns its secure URL. Keys are unique per upload, so
// existing assets are never overwritten.
func (s *Storage) Put(ctx context.Context, key string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID(key),
		ResourceType:   "raw",
		Overwrite:      api.Bool(false),
		UniqueFilename: api.Bool(false),
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected artifact: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Int("bytes", result.Bytes).Msg("artifact uploaded")

	return result.SecureURL, nil
}

// publicID keeps the directory part of key and maps everything else to URL safe characters.
// Raw assets keep their extension in the public id.
func publicID(key string) string {
	dir, file := path.Split(strings.Trim(key, "/"))
	file = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '_' {
			return r
		}
		return '-'
	}, file)
	return dir + strings.Trim(file, "-")
}

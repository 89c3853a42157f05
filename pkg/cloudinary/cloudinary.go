package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
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

// Service stores diary problem artifacts in Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// UploadArtifact stores a problem photo or audio clip under the owner's
// folder and returns a secure URL.
func (s *Service) UploadArtifact(ctx context.Context, ownerID, name string, reader io.Reader) (string, error) {
	folder := strings.Trim(s.folder, "/")
	if ownerID != "" {
		folder = fmt.Sprintf("%s/%s", folder, sanitizeSegment(ownerID))
	}

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     buildPublicID(name),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	s.logger.Info().
		Str("public_id", result.PublicID).
		Str("owner_id", ownerID).
		Msg("artifact uploaded to cloudinary")

	return result.SecureURL, nil
}

func buildPublicID(name string) string {
	base := sanitizeSegment(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = fmt.Sprintf("artifact-%d", time.Now().Unix())
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}

func sanitizeSegment(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, value)

	return strings.Trim(cleaned, "-")
}

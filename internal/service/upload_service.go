package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mathmood/diary-api/internal/dto"
	"github.com/mathmood/diary-api/internal/models"
	"github.com/mathmood/diary-api/internal/observability"
	"github.com/mathmood/diary-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

// ArtifactStorage abstracts the artifact upload destination.
type ArtifactStorage interface {
	UploadArtifact(ctx context.Context, ownerID, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores problem artifact files. Only images
// (photos and drawing exports) are accepted; everything else is rejected by
// detected MIME type, never by file extension.
type UploadService interface {
	UploadArtifact(ctx context.Context, userID string, file *multipart.FileHeader) (dto.UploadArtifactResponse, error)
}

type uploadService struct {
	storage ArtifactStorage
	repo    repository.ArtifactUploadRepository
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage ArtifactStorage, repo repository.ArtifactUploadRepository, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		storage: storage,
		repo:    repo,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/mathmood/diary-api/internal/service/upload"),
	}
}

func (s *uploadService) UploadArtifact(ctx context.Context, userID string, file *multipart.FileHeader) (dto.UploadArtifactResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.artifact")
	defer span.End()

	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadArtifactResponse{}, err
	}

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadArtifactResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadArtifactResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadArtifactResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.UploadArtifactResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	mimeLabel := artifactMimeLabel(detected.String())
	span.SetAttributes(attribute.String("upload.detected_mime", mimeLabel))
	if !isAllowedArtifactType(mimeLabel) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UploadArtifactResponse{}, ErrUploadTypeNotAllowed
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeFileName(file.Filename)

	url, err := s.storage.UploadArtifact(ctx, userID, sanitizedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.UploadArtifactResponse{}, err
	}

	record := models.ArtifactUpload{
		ProfileID: userID,
		FileName:  sanitizedName,
		URL:       url,
		MimeType:  mimeLabel,
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UploadArtifactResponse{}, err
	}

	observability.UploadRequests().WithLabelValues(mimeLabel).Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.UploadArtifactResponse{
		URL:       url,
		SizeBytes: record.SizeBytes,
		MimeType:  record.MimeType,
		Checksum:  record.Checksum,
		FileName:  record.FileName,
	}, nil
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("artifact-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func artifactMimeLabel(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = lower[:idx]
	}
	if strings.HasPrefix(lower, "image/") {
		return "image"
	}
	return lower
}

func isAllowedArtifactType(label string) bool {
	return label == "image"
}

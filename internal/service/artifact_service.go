package service

import (
	"archive/zip"
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
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/observability"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

var (
	// ErrArtifactTooLarge indicates the payload exceeded the configured limit.
	ErrArtifactTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrArtifactTypeNotAllowed indicates the MIME type is not permitted.
	ErrArtifactTypeNotAllowed = errors.New("file type not allowed")
	// ErrArtifactScanFailed indicates the archive could not be inspected.
	ErrArtifactScanFailed = errors.New("file scanning failed")
)

var allowedArtifactTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/zip",
	"text/plain",
}

// ArtifactStorage abstracts where submission artifacts end up.
type ArtifactStorage interface {
	Put(ctx context.Context, key string, reader io.Reader) (string, error)
}

// ArtifactService validates uploaded files and hands back an opaque artifact reference.
type ArtifactService interface {
	Store(ctx context.Context, owner models.Identity, file *multipart.FileHeader) (dto.UploadResponse, error)
	List(ctx context.Context, owner models.Identity) ([]dto.UploadResponse, error)
}

type artifactService struct {
	storage ArtifactStorage
	repo    repository.UploadRepository
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
	now     func() time.Time
}

// NewArtifactService constructs an artifact service.
func NewArtifactService(storage ArtifactStorage, repo repository.UploadRepository, maxSizeMB int, logger zerolog.Logger) ArtifactService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &artifactService{
		storage: storage,
		repo:    repo,
		logger:  logger.With().Str("component", "artifact_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/eduportal-api/internal/service/artifact"),
		now:     time.Now,
	}
}

func (s *artifactService) Store(ctx context.Context, owner models.Identity, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "artifact.store", trace.WithAttributes(
		attribute.Int64("artifact.max_bytes", s.maxSize),
		attribute.String("artifact.owner", owner.ID),
	))
	defer span.End()

	if file == nil {
		err := fmt.Errorf("%w: file is required", ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, err
	}

	if file.Size > s.maxSize {
		return dto.UploadResponse{}, s.reject(span, "size", ErrArtifactTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return dto.UploadResponse{}, s.reject(span, "size", ErrArtifactTooLarge)
	}

	mime := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("artifact.detected_mime", mime.String()))
	fileType, ok := allowedType(mime)
	if !ok {
		return dto.UploadResponse{}, s.reject(span, "type", fmt.Errorf("%w: %s", ErrArtifactTypeNotAllowed, mime.String()))
	}

	if fileType == "application/zip" {
		if err := s.scanZip(buf.Bytes()); err != nil {
			return dto.UploadResponse{}, s.reject(span, "scan", err)
		}
	}

	sum := sha256.Sum256(buf.Bytes())
	checksum := hex.EncodeToString(sum[:])

	existing, err := s.repo.FindByChecksum(ctx, owner.ID, checksum)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return dto.UploadResponse{}, err
	}
	if existing != nil {
		observability.ArtifactUploads().WithLabelValues("deduplicated").Inc()
		span.SetStatus(codes.Ok, "deduplicated")
		s.logger.Debug().Str("owner_id", owner.ID).Str("ref", existing.Ref).Msg("artifact already stored")
		return uploadResponse(*existing), nil
	}

	name := sanitizeFileName(file.Filename, mime.Extension(), s.now())
	key := fmt.Sprintf("%s/%s-%s", ownerSegment(owner.ID), uuid.NewString()[:8], name)

	ref, err := s.storage.Put(ctx, key, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return dto.UploadResponse{}, s.reject(span, "storage", err)
	}

	record := models.UploadRecord{
		OwnerID:   owner.ID,
		FileName:  name,
		Ref:       ref,
		MimeType:  fileType,
		SizeBytes: int64(buf.Len()),
		Checksum:  checksum,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UploadResponse{}, err
	}

	observability.ArtifactUploads().WithLabelValues("stored").Inc()
	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Str("owner_id", owner.ID).Str("ref", ref).Int64("bytes", record.SizeBytes).Msg("artifact stored")

	return uploadResponse(record), nil
}

func uploadResponse(record models.UploadRecord) dto.UploadResponse {
	return dto.UploadResponse{
		ArtifactRef: record.Ref,
		FileName:    record.FileName,
		MimeType:    record.MimeType,
		SizeBytes:   record.SizeBytes,
		Checksum:    record.Checksum,
	}
}

func (s *artifactService) List(ctx context.Context, owner models.Identity) ([]dto.UploadResponse, error) {
	records, err := s.repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UploadResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, uploadResponse(record))
	}
	return responses, nil
}

func (s *artifactService) reject(span trace.Span, reason string, err error) error {
	observability.ArtifactUploads().WithLabelValues("rejected_" + reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	return err
}

// scanZip refuses archives whose uncompressed size is out of proportion to the upload limit.
func (s *artifactService) scanZip(payload []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ErrArtifactScanFailed
	}
	var total uint64
	for _, f := range reader.File {
		total += f.UncompressedSize64
		if total > uint64(s.maxSize*20) {
			return fmt.Errorf("zip archive uncompressed size too large: %w", ErrArtifactScanFailed)
		}
	}
	return nil
}

func allowedType(mime *mimetype.MIME) (string, bool) {
	for detected := mime; detected != nil; detected = detected.Parent() {
		for _, allowed := range allowedArtifactTypes {
			if detected.Is(allowed) {
				return allowed, true
			}
		}
	}
	return "", false
}

func sanitizeFileName(name, detectedExt string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("artifact-%d", now.Unix())
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = detectedExt
	}
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func ownerSegment(id string) string {
	segment := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, id)
	if segment == "" {
		return "anonymous"
	}
	return segment
}

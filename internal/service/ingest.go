package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/platewise/backend/config"
	"github.com/pageza/platewise/backend/internal/agent"
	"github.com/pageza/platewise/backend/internal/ai"
	"github.com/pageza/platewise/backend/internal/models"
)

// IngestService runs the image ingest flow: the raw upload is persisted
// before any model call, then the record transitions exactly once to
// "parsed" or "error". Rows are never deleted and model calls never retried.
type IngestService struct {
	db *gorm.DB
	ai ai.VisionRunner
	s3 *config.S3Config
}

// NewIngestService creates a new IngestService instance. s3Config may be nil,
// which disables archiving.
func NewIngestService(db *gorm.DB, runner ai.VisionRunner, s3Config *config.S3Config) *IngestService {
	return &IngestService{
		db: db,
		ai: runner,
		s3: s3Config,
	}
}

// PantryResult reports the outcome of one pantry extraction.
type PantryResult struct {
	IngestID uuid.UUID
	Extract  *agent.PantryExtract
	Raw      string
}

// ExtractPantry persists the upload, calls the vision model and validates its
// output. On parse/validation failure the raw model text is kept on the
// record for debugging. A non-nil result with a nil Extract means the ingest
// row exists but extraction failed.
func (s *IngestService) ExtractPantry(ctx context.Context, userID uuid.UUID, imageBase64, mimeType string) (*PantryResult, error) {
	ingest := models.ImageIngest{
		UserID:      userID,
		Kind:        "pantry",
		MimeType:    mimeType,
		ImageBase64: imageBase64,
		Status:      models.IngestStatusNew,
	}
	if err := s.db.WithContext(ctx).Create(&ingest).Error; err != nil {
		return nil, fmt.Errorf("failed to create image ingest: %w", err)
	}

	s.archive(ctx, &ingest)

	result := &PantryResult{IngestID: ingest.ID}

	raw, err := s.ai.RunAgentWithImage(ctx, ai.RouteImagePantry, agent.PantryPrompt, imageBase64, mimeType)
	result.Raw = raw
	if err != nil {
		s.markError(ctx, ingest.ID, raw)
		return result, err
	}

	parsed, err := agent.ParsePantryExtract(raw)
	if err != nil {
		s.markError(ctx, ingest.ID, raw)
		return result, err
	}

	extractedJSON, err := json.Marshal(parsed)
	if err != nil {
		s.markError(ctx, ingest.ID, raw)
		return result, err
	}

	if err := s.db.WithContext(ctx).Model(&models.ImageIngest{}).
		Where("id = ?", ingest.ID).
		Updates(map[string]interface{}{
			"status":         models.IngestStatusParsed,
			"extracted_json": string(extractedJSON),
		}).Error; err != nil {
		return result, fmt.Errorf("failed to update image ingest: %w", err)
	}

	result.Extract = parsed
	return result, nil
}

// markError transitions the record to "error", preserving the raw model text
// verbatim for diagnosis.
func (s *IngestService) markError(ctx context.Context, ingestID uuid.UUID, raw string) {
	rawJSON, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		rawJSON = []byte(`{"raw":""}`)
	}

	if err := s.db.WithContext(ctx).Model(&models.ImageIngest{}).
		Where("id = ?", ingestID).
		Updates(map[string]interface{}{
			"status":         models.IngestStatusError,
			"extracted_json": string(rawJSON),
		}).Error; err != nil {
		log.Printf("[IngestService] Failed to mark ingest %s as error: %v", ingestID, err)
	}
}

// archive uploads the raw image to S3, best effort. The ingest row in the
// store is the durable copy; archiving failures are logged and ignored.
func (s *IngestService) archive(ctx context.Context, ingest *models.ImageIngest) {
	if s.s3 == nil {
		return
	}

	data, err := base64.StdEncoding.DecodeString(ingest.ImageBase64)
	if err != nil {
		log.Printf("[IngestService] Skipping archive of ingest %s: %v", ingest.ID, err)
		return
	}

	key := fmt.Sprintf("ingests/%s/%s", ingest.Kind, ingest.ID)
	_, err = s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ingest.MimeType),
	})
	if err != nil {
		log.Printf("[IngestService] Failed to archive ingest %s to S3: %v", ingest.ID, err)
		return
	}

	if err := s.db.WithContext(ctx).Model(&models.ImageIngest{}).
		Where("id = ?", ingest.ID).
		Update("archive_key", key).Error; err != nil {
		log.Printf("[IngestService] Failed to record archive key for ingest %s: %v", ingest.ID, err)
	}
}

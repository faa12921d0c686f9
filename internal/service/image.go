package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/repository"
)

// s3API is the slice of the S3 client the image service uses. Tests substitute
// an in-memory implementation.
type s3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stages recipe image uploads on local disk and pushes them to S3
// from the worker. The two-phase flow keeps the upload request fast: the API
// handler calls Stage, enqueues a job, and the worker calls Upload.
type ImageService struct {
	recipes    *repository.RecipeRepository
	s3Client   s3API
	bucket     string
	region     string
	stagingDir string
	logger     *zap.Logger
}

func NewImageService(recipes *repository.RecipeRepository, s3Client s3API, bucket, region, stagingDir string, logger *zap.Logger) *ImageService {
	return &ImageService{
		recipes:    recipes,
		s3Client:   s3Client,
		bucket:     bucket,
		region:     region,
		stagingDir: stagingDir,
		logger:     logger,
	}
}

// Stage writes the uploaded bytes to the staging directory and records a
// pending image row. The returned image id is handed to the upload job.
func (s *ImageService) Stage(ctx context.Context, recipeID uint, filename string, body io.Reader) (*models.RecipeImage, error) {
	if _, err := s.recipes.FindByID(ctx, recipeID, true); err != nil {
		return nil, err
	}

	ext := filepath.Ext(filename)
	objectKey := fmt.Sprintf("recipes/%d/%s%s", recipeID, uuid.NewString(), ext)

	stagedPath := s.stagedPath(objectKey)
	if err := os.MkdirAll(filepath.Dir(stagedPath), 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to create staging directory")
	}
	out, err := os.Create(stagedPath)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to stage upload")
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, body); err != nil {
		_ = os.Remove(stagedPath)
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to stage upload")
	}

	image := &models.RecipeImage{
		RecipeID:  recipeID,
		ObjectKey: objectKey,
		State:     models.ImageStatePending,
	}
	if err := s.recipes.CreateImage(ctx, image); err != nil {
		_ = os.Remove(stagedPath)
		return nil, err
	}

	s.logger.Info("staged recipe image",
		zap.Uint("recipe_id", recipeID),
		zap.Uint("image_id", image.ID),
		zap.String("object_key", objectKey),
	)
	return image, nil
}

// Upload pushes a staged image to S3, marks the row uploaded and removes the
// staged file. Safe to retry: a second run re-puts the same object key.
func (s *ImageService) Upload(ctx context.Context, imageID uint, objectKey string) error {
	stagedPath := s.stagedPath(objectKey)
	file, err := os.Open(stagedPath)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "staged file missing")
	}
	defer func() { _ = file.Close() }()

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &objectKey,
		Body:   file,
	})
	if err != nil {
		return apperr.Wrap(err, apperr.CodeUnavailable, "failed to upload image to s3")
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
	if err := s.recipes.MarkImageUploaded(ctx, imageID, url); err != nil {
		return err
	}

	if err := os.Remove(stagedPath); err != nil {
		s.logger.Warn("failed to remove staged file", zap.String("path", stagedPath), zap.Error(err))
	}

	s.logger.Info("uploaded recipe image",
		zap.Uint("image_id", imageID),
		zap.String("url", url),
	)
	return nil
}

func (s *ImageService) stagedPath(objectKey string) string {
	return filepath.Join(s.stagingDir, filepath.FromSlash(objectKey))
}

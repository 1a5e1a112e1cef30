package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scribbles/internal/config"
	domain "scribbles/internal/model"
)

// ObjectStore receives ingested images when they are not inlined.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) (url string, err error)
}

// MediaService turns uploaded images into URLs usable as cover images or
// inline content images. Without an object store the result is a data URL.
type MediaService struct {
	objects  ObjectStore
	maxSize  int64
	maxWidth int
	log      *zap.Logger
}

// NewMediaService builds the service; objects may be nil.
func NewMediaService(objects ObjectStore, maxSize int64, maxWidth int, log *zap.Logger) *MediaService {
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxImageSizeBytes
	}
	return &MediaService{
		objects:  objects,
		maxSize:  maxSize,
		maxWidth: maxWidth,
		log:      log.Named("MediaService"),
	}
}

// MaxSize is the largest accepted upload in bytes.
func (s *MediaService) MaxSize() int64 {
	return s.maxSize
}

// IngestImage validates an upload, downsizes it if wider than the configured
// maximum and returns where it can be loaded from.
func (s *MediaService) IngestImage(ctx context.Context, r io.Reader, size int64, contentType string) (*domain.UploadResult, error) {
	data, contentType, err := readAndValidateImage(r, size, contentType, s.maxSize)
	if err != nil {
		return nil, err
	}

	data, err = shrinkToWidth(data, contentType, s.maxWidth)
	if err != nil {
		return nil, err
	}

	if s.objects == nil {
		return &domain.UploadResult{URL: dataURL(contentType, data)}, nil
	}

	key := fmt.Sprintf("%s/%s%s", domain.ImageFolder, uuid.NewString(), extensionFor(contentType))
	url, err := s.objects.PutObject(ctx, key, data, contentType, domain.ImageCacheControl)
	if err != nil {
		return nil, err
	}
	s.log.Info("Image uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return &domain.UploadResult{URL: url, Key: key}, nil
}

// readAndValidateImage loads the upload into memory with size and type checks.
// A missing content type is sniffed from the data.
func readAndValidateImage(r io.Reader, size int64, contentType string, maxSize int64) ([]byte, string, error) {
	if size > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	limitedReader := io.LimitReader(r, maxSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !domain.IsAllowedImageType(contentType) {
		return nil, "", domain.ErrInvalidImageType
	}

	return data, contentType, nil
}

// shrinkToWidth resizes images wider than maxWidth, keeping the aspect ratio
// and the original format. WebP is passed through untouched since it cannot
// be re-encoded.
func shrinkToWidth(data []byte, contentType string, maxWidth int) ([]byte, error) {
	if maxWidth <= 0 || contentType == domain.ContentTypeWebP {
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= maxWidth {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	format := imaging.JPEG
	switch contentType {
	case domain.ContentTypePNG:
		format = imaging.PNG
	case domain.ContentTypeGIF:
		format = imaging.GIF
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(domain.ImageJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func extensionFor(contentType string) string {
	switch contentType {
	case domain.ContentTypePNG:
		return ".png"
	case domain.ContentTypeGIF:
		return ".gif"
	case domain.ContentTypeWebP:
		return ".webp"
	}
	return ".jpg"
}

// R2Bucket stores images in Cloudflare R2 through its S3-compatible API.
type R2Bucket struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewR2Bucket constructs an S3-compatible client for Cloudflare R2.
func NewR2Bucket(ctx context.Context, cfg *config.Config) (*R2Bucket, error) {
	if !cfg.R2Enabled() {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Bucket{
		s3Client:  s3Client,
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// PutObject uploads bytes to R2 with metadata and returns the public URL.
func (b *R2Bucket) PutObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) (string, error) {
	_, err := b.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to r2: %w", err)
	}
	return fmt.Sprintf("%s/%s", b.publicURL, key), nil
}

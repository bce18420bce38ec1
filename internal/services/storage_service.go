// internal/services/storage_service.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/config"
)

var (
	ErrImageTooLarge = errors.New("image exceeds the upload size limit")
	ErrImageInvalid  = errors.New("not a supported image")
)

// ObjectPutter is the S3 call the storage service makes.
type ObjectPutter interface {
	PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

// StorageService stores profile images in S3, or under the local upload
// directory when no AWS credentials are configured.
type StorageService struct {
	s3Client ObjectPutter
	aws      config.AWSConfig
	log      *logrus.Entry
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func NewStorageService(cfg config.AWSConfig) (*StorageService, error) {
	s := &StorageService{aws: cfg, log: logrus.WithField("component", "storage")}
	if cfg.AccessKeyID == "" {
		return s, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	s.s3Client = s3.New(sess)
	return s, nil
}

// WithObjectPutter swaps the S3 client.
func (s *StorageService) WithObjectPutter(p ObjectPutter) *StorageService {
	s.s3Client = p
	return s
}

// UploadProfileImage stores a user's profile image and returns its public URL.
func (s *StorageService) UploadProfileImage(uid string, content io.Reader) (*UploadResult, error) {
	limit := s.aws.MaxUploadSizeMB * 1024 * 1024
	if limit <= 0 {
		limit = 10 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(content, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrImageTooLarge
	}

	mimeType := http.DetectContentType(data)
	ext, ok := imageExtensions[mimeType]
	if !ok {
		return nil, ErrImageInvalid
	}

	key := s.objectKey("profile-images/"+uid, ext)
	if s.s3Client != nil {
		return s.uploadToS3(data, key, mimeType)
	}
	return s.uploadToLocal(data, key, mimeType)
}

func (s *StorageService) uploadToS3(data []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.aws.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.s3URL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(data []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.aws.UploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	s.log.WithField("key", key).Debug("Stored image locally")

	return &UploadResult{
		URL:      strings.TrimRight(s.aws.PublicBaseURL, "/") + "/uploads/" + key,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) objectKey(folder, ext string) string {
	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s/%s_%s%s", folder, timestamp, uuid.New().String()[:8], ext)
}

func (s *StorageService) s3URL(key string) string {
	if s.aws.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.aws.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.aws.S3Bucket, s.aws.Region, key)
}

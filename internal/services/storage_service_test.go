// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frima-market/frima-gateway/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	args := m.Called(input)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func localStorage(t *testing.T) (*StorageService, string) {
	dir := t.TempDir()
	svc, err := NewStorageService(config.AWSConfig{
		UploadDir:       dir,
		PublicBaseURL:   "http://localhost:8080/",
		MaxUploadSizeMB: 1,
	})
	require.NoError(t, err)
	return svc, dir
}

func TestUploadProfileImageLocally(t *testing.T) {
	svc, dir := localStorage(t)

	result, err := svc.UploadProfileImage("u1", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.MimeType)
	assert.True(t, strings.HasPrefix(result.Key, "profile-images/u1/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, "http://localhost:8080/uploads/"+result.Key, result.URL)

	written, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, written)
}

func TestUploadProfileImageRejectsLargeFiles(t *testing.T) {
	svc, _ := localStorage(t)
	big := append(append([]byte{}, pngHeader...), make([]byte, 1024*1024)...)

	_, err := svc.UploadProfileImage("u1", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestUploadProfileImageRejectsNonImages(t *testing.T) {
	svc, _ := localStorage(t)

	_, err := svc.UploadProfileImage("u1", strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrImageInvalid)
}

func TestUploadProfileImageToS3(t *testing.T) {
	putter := &mockPutter{}
	svc, err := NewStorageService(config.AWSConfig{
		Region:        "ap-northeast-1",
		S3Bucket:      "frima-profile-images",
		CloudFrontURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	svc.WithObjectPutter(putter)

	putter.On("PutObject", mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.StringValue(in.Bucket) == "frima-profile-images" &&
			aws.StringValue(in.ContentType) == "image/png" &&
			aws.StringValue(in.ACL) == "public-read"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	result, err := svc.UploadProfileImage("u1", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+result.Key, result.URL)
	putter.AssertExpectations(t)
}

func TestUploadProfileImageS3Failure(t *testing.T) {
	putter := &mockPutter{}
	svc, err := NewStorageService(config.AWSConfig{Region: "ap-northeast-1", S3Bucket: "b"})
	require.NoError(t, err)
	svc.WithObjectPutter(putter)
	putter.On("PutObject", mock.Anything).Return(nil, errors.New("AccessDenied"))

	_, err = svc.UploadProfileImage("u1", bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestS3URLWithoutCloudFront(t *testing.T) {
	svc := &StorageService{aws: config.AWSConfig{Region: "ap-northeast-1", S3Bucket: "bucket"}}
	assert.Equal(t, "https://bucket.s3.ap-northeast-1.amazonaws.com/k.png", svc.s3URL("k.png"))
}

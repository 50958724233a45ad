package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"passport photo.jpg":      "passport_photo.jpg",
		"../../etc/passwd":        "passwd",
		`C:\Users\me\birth.pdf`:   "birth.pdf",
		".hidden":                 "hidden",
		"ob#report(1).png":        "obreport1.png",
		"":                        "upload",
		"..":                      "upload",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}

	assert.Equal(t, "APP2026000001_passportPhoto_me.jpg", DocumentName("APP2026000001", "passportPhoto", "me.jpg"))
}

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	name, err := storage.Save(context.Background(), "APP2026000001_ob_photo_ob.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "APP2026000001_ob_photo_ob.jpg", name)

	content, err := os.ReadFile(filepath.Join(dir, "uploads", name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(content))

	require.NoError(t, storage.Delete(context.Background(), name))
	_, err = os.Stat(filepath.Join(dir, "uploads", name))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, storage.Delete(context.Background(), name), "deleting twice is not an error")

	_, err = storage.Path("../secret")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, DriverLocal, storage.Driver())
}

type mockCloudinary struct {
	mock.Mock
}

func (m *mockCloudinary) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	args := m.Called(file, params)
	return args.Get(0).(*uploader.UploadResult), args.Error(1)
}

func (m *mockCloudinary) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(params.PublicID)
	return args.Get(0).(*uploader.DestroyResult), args.Error(1)
}

func TestNewCloudinaryStorage(t *testing.T) {
	storage, err := NewCloudinaryStorage("demo", "key", "secret")
	require.NoError(t, err)

	assert.IsType(t, &uploader.API{}, storage.uploader)
	assert.Equal(t, DriverCloudinary, storage.Driver())
}

func TestCloudinaryStorage(t *testing.T) {
	up := &mockCloudinary{}
	up.On("Upload", mock.Anything, mock.MatchedBy(func(p uploader.UploadParams) bool {
		return p.PublicID == "REP2026000001_ob_photo_ob.jpg" && p.Folder == "applications"
	})).Return(&uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/ob.jpg"}, nil)

	storage := &CloudinaryStorage{uploader: up, folder: "applications"}

	url, err := storage.Save(context.Background(), "REP2026000001_ob_photo_ob.jpg", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/ob.jpg", url)

	up.On("Destroy", "applications/REP2026000001_ob_photo_ob.jpg").Return(&uploader.DestroyResult{Result: "ok"}, nil)
	require.NoError(t, storage.Delete(context.Background(), "REP2026000001_ob_photo_ob.jpg"))

	up.On("Destroy", "applications/gone.jpg").Return(&uploader.DestroyResult{Error: api.ErrorResp{Message: "not found"}}, nil)
	assert.ErrorContains(t, storage.Delete(context.Background(), "gone.jpg"), "not found")

	up.AssertExpectations(t)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(params.Body)
	args := m.Called(*params.Bucket, *params.Key, *params.ContentType, string(body))
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(*params.Bucket, *params.Key)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestS3Storage(t *testing.T) {
	client := &mockS3{}
	client.On("PutObject", "id-docs", "APP2026000001_birth_certificate_b.pdf", "application/octet-stream", "pdf").Return(nil)

	storage := &S3Storage{client: client, bucket: "id-docs", region: "af-south-1"}

	url, err := storage.Save(context.Background(), "APP2026000001_birth_certificate_b.pdf", "", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "https://id-docs.s3.af-south-1.amazonaws.com/APP2026000001_birth_certificate_b.pdf", url)

	client.On("DeleteObject", "id-docs", "APP2026000001_birth_certificate_b.pdf").Return(nil)
	require.NoError(t, storage.Delete(context.Background(), "APP2026000001_birth_certificate_b.pdf"))

	client.AssertExpectations(t)
}

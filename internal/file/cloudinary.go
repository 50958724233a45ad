package file

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

var _ cloudinaryUploader = (*uploader.API)(nil)

type CloudinaryStorage struct {
	uploader cloudinaryUploader
	folder   string
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}

	return &CloudinaryStorage{uploader: &cld.Upload, folder: "applications"}, nil
}

func (s *CloudinaryStorage) Driver() string {
	return DriverCloudinary
}

func (s *CloudinaryStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	result, err := s.uploader.Upload(ctx, r, uploader.UploadParams{
		PublicID: name,
		Folder:   s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", name, result.Error.Message)
	}

	return result.SecureURL, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, name string) error {
	result, err := s.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:   path.Join(s.folder, name),
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("destroy %s: %w", name, err)
	}

	if result.Error.Message != "" {
		return fmt.Errorf("destroy %s: %s", name, result.Error.Message)
	}

	return nil
}

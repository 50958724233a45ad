// Package file stores uploaded application documents. Local disk is the
// default; Cloudinary and S3 are drop-in drivers selected by configuration.
package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
)

const (
	DriverLocal      = "local"
	DriverCloudinary = "cloudinary"
	DriverS3         = "s3"
)

// Storage saves a document under name and returns the path recorded on the
// document row: the bare name for local storage, a URL for remote drivers.
// Delete takes the same name given to Save.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	Driver() string
}

var rgxUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeName reduces an uploaded filename to a safe basename.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = rgxUnsafe.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")

	if name == "" {
		return "upload"
	}
	return name
}

// DocumentName is the storage name of an upload: <application>_<form key>_<file>.
func DocumentName(applicationNumber, formKey, filename string) string {
	return fmt.Sprintf("%s_%s_%s", applicationNumber, SanitizeName(formKey), SanitizeName(filename))
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const (
	publicHost   = "storage.googleapis.com"
	objectPrefix = "products"
)

var (
	ErrNotOwnedURL = errors.New("storage: url does not belong to this bucket")
)

// BlobStore holds product image binaries addressed by public URL. The
// catalog database only ever stores the URL returned by Upload.
type BlobStore interface {
	// Upload writes the payload and returns its publicly reachable URL.
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, publicURL string) error
	// Owns reports whether the URL addresses an object in this store.
	Owns(publicURL string) bool
}

// Store is a Cloud Storage backed BlobStore.
type Store struct {
	client *gcs.Client
	bucket string
}

// NewStore constructs a BlobStore over the given bucket.
func NewStore(client *gcs.Client, bucket string) (*Store, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("storage: bucket name is required")
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Upload streams the payload into a freshly named object. The object name
// carries a random prefix so repeated uploads of the same filename never
// collide or overwrite each other.
func (s *Store) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	object := ObjectName(filename)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("storage: upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize %s: %w", object, err)
	}

	return PublicURL(s.bucket, object), nil
}

// Delete removes the object behind publicURL. Deleting an already removed
// object is treated as success.
func (s *Store) Delete(ctx context.Context, publicURL string) error {
	object, err := ObjectFromURL(s.bucket, publicURL)
	if err != nil {
		return err
	}

	err = s.client.Bucket(s.bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %s: %w", object, err)
	}
	return nil
}

// Owns reports whether publicURL addresses an object inside this bucket.
func (s *Store) Owns(publicURL string) bool {
	_, err := ObjectFromURL(s.bucket, publicURL)
	return err == nil
}

// IsExternalURL reports whether an image path is a URL at all, as opposed
// to a bare legacy path. Only URL-form paths are candidates for deletion
// through the blob store.
func IsExternalURL(imagePath string) bool {
	return strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://")
}

// ObjectName derives a collision-free object name from a filename hint.
func ObjectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%s/%s-%s", objectPrefix, uuid.New().String(), base)
}

// PublicURL renders the canonical public address of an object.
func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://%s/%s/%s", publicHost, bucket, object)
}

// ObjectFromURL extracts the object name from a public URL, rejecting URLs
// that do not address the given bucket.
func ObjectFromURL(bucket, publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("storage: parse url: %w", err)
	}
	if u.Host != publicHost {
		return "", ErrNotOwnedURL
	}

	trimmed := strings.TrimPrefix(u.Path, "/")
	object, ok := strings.CutPrefix(trimmed, bucket+"/")
	if !ok || object == "" {
		return "", ErrNotOwnedURL
	}
	return object, nil
}

package cover

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"

	"lifebookshelf-sync/internal/config"
)

// ObjectStatter is the slice of the MinIO client the resolver needs.
type ObjectStatter interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Resolver turns a stored cover-image reference into a public URL, or ""
// when the image cannot be served. A missing or unreachable image is never
// an error; notifications simply go out without one.
type Resolver interface {
	Resolve(ctx context.Context, ref string) string
}

type resolver struct {
	statter        ObjectStatter
	bucket         string
	publicEndpoint string
	publicUseSSL   bool
}

func NewResolver(statter ObjectStatter, cfg *config.Config) Resolver {
	return &resolver{
		statter:        statter,
		bucket:         cfg.MinIOBucket,
		publicEndpoint: cfg.MinIOPublicEndpoint,
		publicUseSSL:   cfg.MinIOPublicUseSSL,
	}
}

func (r *resolver) Resolve(ctx context.Context, ref string) string {
	if ref == "" {
		return ""
	}
	// Already a fully-qualified URL, use it verbatim.
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if r.statter == nil {
		return ""
	}

	if _, err := r.statter.StatObject(ctx, r.bucket, ref, minio.StatObjectOptions{}); err != nil {
		log.Printf("cover image %q not available: %v", ref, err)
		return ""
	}

	scheme := "http"
	if r.publicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, r.publicEndpoint, r.bucket, url.PathEscape(ref))
}

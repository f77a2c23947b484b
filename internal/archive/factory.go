package archive

import (
	"context"
	"fmt"

	"intake-go/internal/config"
	"intake-go/internal/intake"
)

// NewArchiveFromConfig creates an Archive implementation based on the
// archive config type. An empty type disables archiving and returns nil.
func NewArchiveFromConfig(cfg config.ArchiveConfig) (intake.Archive, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryArchive(), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 archive requires s3_bucket to be set")
		}
		return NewS3Archive(context.Background(), cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem archive requires fs_root to be set")
		}
		return NewFileSystemArchive(cfg.FSRoot)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"intake-go/internal/intake"
)

// S3Archive stores evidence content in an S3 bucket under
// <prefix>/content/<checksum>. Credentials come from the standard AWS
// credential chain (environment, shared config, instance role).
type S3Archive struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Archive creates an S3 archive for the given bucket, prefix and region.
// When accessKeyID and secretAccessKey are both set they take precedence
// over the default credential chain.
func NewS3Archive(ctx context.Context, bucket, prefix, region, accessKeyID, secretAccessKey string) (*S3Archive, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Archive{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

// NewS3ArchiveFromClient wraps an existing S3 client (used in tests).
func NewS3ArchiveFromClient(client *s3.Client, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (a *S3Archive) contentKey(checksum string) string {
	return path.Join(a.prefix, "content", checksum)
}

// Put uploads content under its checksum. Existing objects are left alone,
// which makes the operation idempotent per checksum. Large files go up as
// multipart uploads via the transfer manager.
func (a *S3Archive) Put(checksum string, r io.Reader, size int64) error {
	ctx := context.Background()

	exists, err := a.Has(checksum)
	if err != nil {
		return err
	}
	if exists {
		written, err := io.Copy(io.Discard, r)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		if written != size {
			return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
		}
		return nil
	}

	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.contentKey(checksum)),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("uploading content to s3: %w", err)
	}
	return nil
}

// Get downloads content by checksum and writes it to w.
func (a *S3Archive) Get(checksum string, w io.Writer) error {
	ctx := context.Background()

	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.contentKey(checksum)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return fmt.Errorf("content not found: %s", checksum)
		}
		return fmt.Errorf("fetching content from s3: %w", err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading content from s3: %w", err)
	}
	return nil
}

// Has reports whether content with the given checksum is stored.
func (a *S3Archive) Has(checksum string) (bool, error) {
	ctx := context.Background()

	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.contentKey(checksum)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking content in s3: %w", err)
	}
	return true, nil
}

// ValidateSetup verifies the bucket is reachable with the current credentials.
func (a *S3Archive) ValidateSetup() error {
	ctx := context.Background()

	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket not accessible: %w", err)
	}
	return nil
}

// Compile-time check that S3Archive implements intake.Archive
var _ intake.Archive = (*S3Archive)(nil)

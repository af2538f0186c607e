package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"wxrmessenger/internal/types"
)

// S3API defines the subset of the S3 client used by S3MailStore.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// maxRawMessageSize caps how much of an object is read. SES receipt rules
// reject messages over 40MB, so anything larger is not a real message.
const maxRawMessageSize = 40 << 20

// S3MailStore reads the raw messages written by the SES receipt rule's S3
// action. Objects live at the bucket root under their SES message ID.
type S3MailStore struct {
	api    S3API
	bucket string
	logger *slog.Logger
}

// NewS3MailStore creates an S3MailStore from an AWS config.
func NewS3MailStore(awsCfg aws.Config, bucket string, logger *slog.Logger) *S3MailStore {
	return NewS3MailStoreWithAPI(s3.NewFromConfig(awsCfg), bucket, logger)
}

// NewS3MailStoreWithAPI creates an S3MailStore with a pre-configured S3API.
func NewS3MailStoreWithAPI(api S3API, bucket string, logger *slog.Logger) *S3MailStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3MailStore{api: api, bucket: bucket, logger: logger}
}

// Get returns the raw message bytes.
func (s *S3MailStore) Get(ctx context.Context, messageID string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(messageID),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		var notFound *s3types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, types.NewAppError(types.ErrCodeNotFoundMessage,
				fmt.Sprintf("no raw message %s in bucket %s", messageID, s.bucket), err)
		}
		return nil, types.NewAppError(types.ErrCodeUpstreamStorage,
			fmt.Sprintf("failed to get raw message %s", messageID), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxRawMessageSize))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamStorage,
			fmt.Sprintf("failed to read raw message %s", messageID), err)
	}
	return data, nil
}

// Delete removes the raw message. Deleting a missing key succeeds.
func (s *S3MailStore) Delete(ctx context.Context, messageID string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(messageID),
	})
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamStorage,
			fmt.Sprintf("failed to delete raw message %s", messageID), err)
	}
	return nil
}

var _ MailStore = (*S3MailStore)(nil)

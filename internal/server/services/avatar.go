package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	sc "github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// PresignedAvatar is a one-off upload slot for the caller's avatar.
type PresignedAvatar struct {
	UploadURL string
	Key       string
	PublicURL string
	ExpiresAt time.Time
}

// AvatarService stores avatar images in an S3-compatible bucket and points
// the caller's account at them.
type AvatarService struct {
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
	now         func() time.Time
}

func NewAvatarService(m repomanager.RepositoryManager, cfg *sc.Config, logger logging.Logger) *AvatarService {
	return &AvatarService{
		repomanager: m,
		config:      cfg,
		logger:      logger.With("module", "avatar"),
		now:         time.Now,
	}
}

// avatarKey builds avatars/<yyyy>/<mm>/<dd>/<unix-ms>_<uuid8><ext>.
func (s *AvatarService) avatarKey(contentType string) string {
	d := s.now().UTC()
	return fmt.Sprintf("avatars/%04d/%02d/%02d/%d_%s%s",
		d.Year(), int(d.Month()), d.Day(), timex.Millis(d), uuid.NewString()[:8], extensionFor(contentType))
}

func (s *AvatarService) publicURL(key string) string {
	return strings.TrimRight(s.config.S3PublicBaseURL, "/") + "/" + key
}

func (s *AvatarService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// UploadAvatar stores data as the caller's avatar and returns its public URL.
func (s *AvatarService) UploadAvatar(ctx context.Context, caller *models.Account, contentType string, data []byte) (string, error) {
	if caller == nil {
		return "", common.NewNotLoggedInError()
	}
	if err := s.checkImage(contentType, int64(len(data))); err != nil {
		return "", err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client init failed", "err", err)
		return "", common.NewSystemError("upload failed", err)
	}

	bucket := s.config.S3Bucket
	key := s.avatarKey(contentType)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.logger.Error(ctx, "put avatar failed", "account_id", caller.ID, "key", key, "err", err)
		return "", common.NewSystemError("upload failed", err)
	}

	url := s.publicURL(key)
	if err := s.setAvatar(ctx, caller.ID, url); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "avatar uploaded", "account_id", caller.ID, "key", key)
	return url, nil
}

// PresignAvatarUpload returns a presigned PUT for a new avatar object of
// size bytes. The signature covers the content type and length, so storage
// rejects any other body. The account is left untouched: once the upload
// succeeds the client points its avatar at PublicURL via UpdateMyProfile.
func (s *AvatarService) PresignAvatarUpload(ctx context.Context, caller *models.Account, contentType string, size int64) (*PresignedAvatar, error) {
	if caller == nil {
		return nil, common.NewNotLoggedInError()
	}
	if err := s.checkImage(contentType, size); err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client init failed", "err", err)
		return nil, common.NewSystemError("upload failed", err)
	}

	bucket := s.config.S3Bucket
	key := s.avatarKey(contentType)
	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		s.logger.Error(ctx, "presign avatar failed", "account_id", caller.ID, "err", err)
		return nil, common.NewSystemError("upload failed", err)
	}

	s.logger.Info(ctx, "avatar upload presigned", "account_id", caller.ID, "key", key)
	return &PresignedAvatar{
		UploadURL: req.URL,
		Key:       key,
		PublicURL: s.publicURL(key),
		ExpiresAt: s.now().Add(presignExpiry),
	}, nil
}

func (s *AvatarService) checkImage(contentType string, size int64) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return common.NewParamsError("file type not allowed")
	}
	if size <= 0 {
		return common.NewParamsError("file is empty")
	}
	if s.config.AvatarMaxBytes > 0 && size > s.config.AvatarMaxBytes {
		return common.NewParamsError("file too large")
	}
	return nil
}

func (s *AvatarService) setAvatar(ctx context.Context, accountID int64, url string) error {
	ok, err := s.repomanager.Accounts().UpdateByID(ctx, &models.Account{
		ID:        accountID,
		AvatarURL: url,
		UpdatedAt: timex.Millis(s.now()),
	})
	if err != nil {
		s.logger.Error(ctx, "set avatar failed", "account_id", accountID, "err", err)
		return common.NewSystemError("upload failed", err)
	}
	if !ok {
		return common.NewOperationError("account does not exist")
	}
	return nil
}

func extensionFor(contentType string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

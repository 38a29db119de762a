package site

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	apperrors "pi-builder/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the part of the S3 client Publish needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

type PublishOptions struct {
	Dir    string
	Bucket string
	Prefix string
}

type PublishResult struct {
	Objects int
	Bytes   int64
}

// Publish uploads every file under Dir to Bucket/Prefix. It stops at the
// first failed upload.
func (b *Builder) Publish(ctx context.Context, up Uploader, opts PublishOptions) (*PublishResult, error) {
	start := time.Now()
	log := b.logger.WithFields(map[string]interface{}{"bucket": opts.Bucket, "prefix": opts.Prefix})
	res := &PublishResult{}

	err := walkFiles(opts.Dir, func(rel string, info fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := path.Join(opts.Prefix, rel)
		f, err := os.Open(filepath.Join(opts.Dir, filepath.FromSlash(rel)))
		if err != nil {
			return apperrors.NewPublishFailedError(key, err)
		}
		defer f.Close()

		_, err = up.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(opts.Bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String(contentType(rel)),
		})
		if err != nil {
			return apperrors.NewPublishFailedError(key, err)
		}
		res.Objects++
		res.Bytes += info.Size()
		log.Debug("uploaded", map[string]interface{}{"key": key, "bytes": info.Size()})
		return nil
	})
	if err != nil {
		b.obs.RecordOperation(ctx, "site.publish", time.Since(start), "error")
		log.Error("publish failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	b.obs.RecordOperation(ctx, "site.publish", time.Since(start), "success")
	log.Info("published", map[string]interface{}{"objects": res.Objects, "size": FormatBytes(res.Bytes)})
	return res, nil
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

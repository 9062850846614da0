package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/bookedbarber/bookedbarber-api/internal/config"
)

// maxEdge caps avatar/logo dimensions; larger uploads are downscaled.
const maxEdge = 512

const webpQuality = 85

// Uploader converts uploaded images to WebP and stores them in S3.
type Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
	log     *zap.Logger
}

func NewUploader(cfg config.S3Config, log *zap.Logger) *Uploader {
	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		log:     log,
	}
}

// UploadImage decodes a JPEG/PNG/WebP upload, downscales it if needed,
// re-encodes as WebP and puts it under key. Returns the public URL.
func (u *Uploader) UploadImage(ctx context.Context, key string, r io.Reader) (string, error) {
	src, format, err := decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img := downscale(src)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/webp"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put: %w", err)
	}

	u.log.Info("image uploaded",
		zap.String("key", key),
		zap.String("source_format", format),
		zap.Int("bytes", buf.Len()))

	return u.baseURL + "/" + key, nil
}

func decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, "webp", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

func downscale(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	if w >= h {
		h = h * maxEdge / w
		w = maxEdge
	} else {
		w = w * maxEdge / h
		h = maxEdge
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
)

// S3Config parámetros del driver s3.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // vacío = AWS
	PathStyle bool
	AccessKey string // vacío = cadena de credenciales por defecto
	SecretKey string
	// HTTPClient reemplaza el transporte (tests).
	HTTPClient *http.Client
}

// S3 almacén sobre un bucket de S3.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3 construye el cliente con la configuración por defecto de AWS.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blob: bucket s3 requerido")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blob: config aws: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3{client: client, presign: s3.NewPresignClient(client), bucket: cfg.Bucket}, nil
}

// Put sube el objeto y devuelve sus metadatos.
func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) (ports.Document, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return ports.Document{}, err
	}
	in := &s3.PutObjectInput{Bucket: &s.bucket, Key: &k, Body: r}
	if contentType != "" {
		in.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return ports.Document{}, fmt.Errorf("blob: put %s: %w", k, err)
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &k})
	if err != nil {
		return ports.Document{}, fmt.Errorf("blob: head %s: %w", k, err)
	}
	return document(k, out.ContentLength, out.ContentType, out.LastModified), nil
}

// Get descarga el objeto; el llamador cierra el cuerpo.
func (s *S3) Get(ctx context.Context, key string) (ports.Document, io.ReadCloser, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return ports.Document{}, nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &k})
	if err != nil {
		if isNotFound(err) {
			return ports.Document{}, nil, domain.ErrNotFound
		}
		return ports.Document{}, nil, fmt.Errorf("blob: get %s: %w", k, err)
	}
	return document(k, out.ContentLength, out.ContentType, out.LastModified), out.Body, nil
}

// List pagina ListObjectsV2 hasta agotar el prefijo.
func (s *S3) List(ctx context.Context, prefix string) ([]ports.Document, error) {
	out := make([]ports.Document, 0)
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &prefix, ContinuationToken: token})
		if err != nil {
			return nil, fmt.Errorf("blob: list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			out = append(out, document(aws.ToString(obj.Key), obj.Size, nil, obj.LastModified))
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			break
		}
		token = page.NextContinuationToken
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// PresignURL URL GET firmada válida por expiry (15 min por defecto).
func (s *S3) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &k},
		func(o *s3.PresignOptions) { o.Expires = expiry })
	if err != nil {
		return "", fmt.Errorf("blob: presign %s: %w", k, err)
	}
	return req.URL, nil
}

func document(key string, size *int64, contentType *string, lastModified *time.Time) ports.Document {
	return ports.Document{
		Key:          key,
		Size:         aws.ToInt64(size),
		ContentType:  aws.ToString(contentType),
		LastModified: aws.ToTime(lastModified),
	}
}

func isNotFound(err error) bool {
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

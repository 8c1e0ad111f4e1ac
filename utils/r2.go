// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrEvidenceStoreDisabled is returned when evidence uploads are attempted
// without R2 being configured. Disputes still work; only attachments are off.
var ErrEvidenceStoreDisabled = errors.New("evidence storage is not configured")

var evidenceClient *s3.Client
var evidenceBucket string
var evidenceCDNBase string

// InitEvidenceStore wires the Cloudflare R2 bucket that holds dispute
// evidence. Returns (false, nil) when the R2 env vars are absent, so a dev
// setup without object storage still boots.
func InitEvidenceStore() (bool, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	evidenceBucket = os.Getenv("R2_BUCKET_NAME")

	if accountID == "" || accessKeyID == "" || evidenceBucket == "" {
		return false, nil
	}

	evidenceCDNBase = os.Getenv("CDN_BASE_URL")
	if evidenceCDNBase == "" {
		evidenceCDNBase = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return false, fmt.Errorf("failed to load R2 config: %w", err)
	}

	evidenceClient = s3.NewFromConfig(cfg)
	return true, nil
}

// UploadEvidence puts a dispute attachment into R2 under the given key
// (e.g., "disputes/<contest>/abc123.png") and returns its public URL.
func UploadEvidence(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error) {
	if evidenceClient == nil {
		return "", ErrEvidenceStoreDisabled
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open evidence file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read evidence file: %w", err)
	}

	_, err = evidenceClient.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(evidenceBucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", evidenceCDNBase, key), nil
}

// Package storage archives transcripts in an S3-compatible bucket such as
// DigitalOcean Spaces.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/nijaru/yt-brief/models"
)

// ErrNoTranscript is returned when a video has nothing in the archive.
var ErrNoTranscript = errors.New("no archived transcript")

type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
}

type SpacesClient struct {
	client *s3.Client
	bucket string
}

func NewSpacesClient(ctx context.Context, cfg SpacesConfig) (*SpacesClient, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &SpacesClient{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// TranscriptKey is the object key of an archived transcript.
func TranscriptKey(videoID, transcriptID string) string {
	return transcriptPrefix(videoID) + transcriptID + ".json"
}

func transcriptPrefix(videoID string) string {
	return fmt.Sprintf("transcripts/%s/", videoID)
}

func (s *SpacesClient) SaveTranscript(ctx context.Context, transcript *models.Transcript) error {
	data, err := json.Marshal(transcript)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transcript")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(TranscriptKey(transcript.VideoID, transcript.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to save to Spaces")
	}
	return nil
}

// LatestTranscript returns the most recently written archived transcript of
// a video, or ErrNoTranscript.
func (s *SpacesClient) LatestTranscript(ctx context.Context, videoID string) (*models.Transcript, error) {
	var (
		latestKey  string
		latestTime time.Time
	)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(transcriptPrefix(videoID)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list Spaces objects")
		}
		for _, obj := range page.Contents {
			modified := aws.ToTime(obj.LastModified)
			if latestKey == "" || modified.After(latestTime) {
				latestKey = aws.ToString(obj.Key)
				latestTime = modified
			}
		}
	}
	if latestKey == "" {
		return nil, ErrNoTranscript
	}

	return s.getTranscript(ctx, latestKey)
}

func (s *SpacesClient) getTranscript(ctx context.Context, key string) (*models.Transcript, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get from Spaces")
	}
	defer result.Body.Close()

	var transcript models.Transcript
	if err := json.NewDecoder(result.Body).Decode(&transcript); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", key)
	}
	return &transcript, nil
}

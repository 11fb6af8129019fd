// Package storage keeps a song library in an S3 compatible bucket and
// serves it as a loader source.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mfenderov/songsim/internal/songfile"
	"github.com/mfenderov/songsim/pkg/models"
)

const songContentType = "text/plain; charset=windows-1252"

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "songsim"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client for song library operations.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Manifest records where the songs under a prefix came from.
type Manifest struct {
	SourceURL string            `json:"source_url"`
	Timestamp string            `json:"timestamp"`
	SongCount int               `json:"song_count"`
	Songs     map[string]string `json:"songs"` // object name -> original URL
}

// SongObjectName returns the object name a song is stored under.
// Names are derived from the song's origin, so storing it again overwrites.
func SongObjectName(prefix, sourceID string) string {
	return path.Join(prefix, "songs", models.GenerateDocumentID(sourceID)+songfile.Extension)
}

// PutSong writes the raw bytes of a song file and returns its object name.
func (c *Client) PutSong(ctx context.Context, prefix, sourceID string, content []byte) (string, error) {
	objectName := SongObjectName(prefix, sourceID)

	_, err := c.minioClient.PutObject(ctx, c.bucket, objectName, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  songContentType,
		UserMetadata: map[string]string{"Source": sourceID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to put song: %w", err)
	}
	return objectName, nil
}

// PutManifest writes the manifest JSON next to the songs of a prefix.
func (c *Client) PutManifest(ctx context.Context, prefix string, manifest Manifest) error {
	objectName := path.Join(prefix, "manifest.json")

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	_, err = c.minioClient.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put manifest: %w", err)
	}
	return nil
}

// GetManifest reads the manifest of a prefix.
func (c *Client) GetManifest(ctx context.Context, prefix string) (*Manifest, error) {
	objectName := path.Join(prefix, "manifest.json")

	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}

// ListSongFiles returns the object names of all song files under a prefix.
func (c *Client) ListSongFiles(ctx context.Context, prefix string) ([]string, error) {
	listPrefix := strings.TrimSuffix(prefix, "/")
	if listPrefix != "" {
		listPrefix += "/"
	}

	var files []string
	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if songfile.IsSongFile(object.Key) {
			files = append(files, object.Key)
		}
	}
	return files, nil
}

// OpenSong opens a song object for reading.
func (c *Client) OpenSong(ctx context.Context, objectName string) (io.ReadCloser, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the parser reads.
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, fmt.Errorf("failed to get song %s: %w", objectName, err)
	}
	return object, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Source returns a loader source over the songs under prefix.
func (c *Client) Source(prefix string) *Source {
	return &Source{client: c, prefix: prefix}
}

// Source lists and opens the songs under one prefix of the bucket.
type Source struct {
	client *Client
	prefix string
}

// Name returns the s3:// location of the prefix.
func (s *Source) Name() string {
	return "s3://" + path.Join(s.client.bucket, s.prefix)
}

// List returns the song objects under the prefix.
func (s *Source) List(ctx context.Context) ([]string, error) {
	return s.client.ListSongFiles(ctx, s.prefix)
}

// Open streams one song object.
func (s *Source) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	return s.client.OpenSong(ctx, id)
}

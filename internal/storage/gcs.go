package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	publicBaseURL = "https://storage.googleapis.com"
	probeTimeout  = 10 * time.Second
	signedURLTTL  = 24 * time.Hour
)

var _ ObjectStore = (*GCSStore)(nil)

type GCSStore struct {
	client     *storage.Client
	httpClient *http.Client
	bucket     string
	baseURL    string
}

type GCSOptions struct {
	Bucket string
	// Credentials is a service account JSON blob or a path to one. Empty
	// falls back to application default credentials.
	Credentials string
	// Endpoint overrides the API endpoint and the public URL base, for
	// emulators and storage gateways.
	Endpoint string
}

func NewGCSStore(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	var clientOpts []option.ClientOption
	if creds := strings.TrimSpace(opts.Credentials); creds != "" {
		// The credentials value is either the service account JSON itself
		// or a path to it.
		if strings.HasPrefix(creds, "{") {
			clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(creds)))
		} else {
			clientOpts = append(clientOpts, option.WithCredentialsFile(creds))
		}
	}

	baseURL := publicBaseURL
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
		baseURL = strings.TrimSuffix(opts.Endpoint, "/")
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client:     client,
		httpClient: &http.Client{Timeout: probeTimeout},
		bucket:     opts.Bucket,
		baseURL:    baseURL,
	}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object: %w", err)
	}

	return nil
}

// ResolveURL returns the object's public URL when the bucket serves it
// anonymously, and falls back to a signed URL for private buckets.
func (s *GCSStore) ResolveURL(ctx context.Context, key string) (string, error) {
	publicURL := fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key)
	if s.probePublic(ctx, publicURL) {
		return publicURL, nil
	}

	signed, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(signedURLTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}

	return signed, nil
}

func (s *GCSStore) probePublic(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

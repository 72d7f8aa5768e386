// internal/services/metadata_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/Afoxcute/sear/internal/cache"
	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
)

// MaxMetadataSize caps how much of a metadata document is read.
const MaxMetadataSize = 1 << 20

// MetadataFetcher resolves an opaque metadata reference into its document.
type MetadataFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// S3Fetcher reads metadata documents from S3. A reference is either
// s3://bucket/key or a key in the default bucket.
type S3Fetcher struct {
	client s3iface.S3API
	bucket string
}

func NewS3Fetcher(cfg config.AWSConfig) (*S3Fetcher, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3FetcherWithClient(s3.New(sess), cfg.MetadataBucket), nil
}

func NewS3FetcherWithClient(client s3iface.S3API, bucket string) *S3Fetcher {
	return &S3Fetcher{client: client, bucket: bucket}
}

func (f *S3Fetcher) locate(ref string) (bucket, key string, err error) {
	if rest, ok := strings.CutPrefix(ref, "s3://"); ok {
		bucket, key, _ = strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return "", "", fmt.Errorf("malformed S3 reference %q", ref)
		}
		return bucket, key, nil
	}
	if f.bucket == "" {
		return "", "", fmt.Errorf("no metadata bucket configured for %q", ref)
	}
	return f.bucket, strings.TrimPrefix(ref, "/"), nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	bucket, key, err := f.locate(ref)
	if err != nil {
		return nil, err
	}

	out, err := f.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata object: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, MaxMetadataSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata object: %w", err)
	}
	if len(body) > MaxMetadataSize {
		return nil, fmt.Errorf("metadata object %s/%s exceeds %d bytes", bucket, key, MaxMetadataSize)
	}
	return body, nil
}

type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// AssetMetadata is the display view of an asset's metadata document. It is
// never consulted by ledger rules.
type AssetMetadata struct {
	IPAssetID   uint64              `json:"ip_asset_id"`
	MetadataRef string              `json:"metadata_ref"`
	IsEncrypted bool                `json:"is_encrypted"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Image       string              `json:"image,omitempty"`
	ExternalURL string              `json:"external_url,omitempty"`
	ContentType string              `json:"content_type,omitempty"`
	Attributes  []MetadataAttribute `json:"attributes,omitempty"`
	Cached      bool                `json:"cached"`
}

type MetadataService struct {
	ledger  *database.Ledger
	fetcher MetadataFetcher
	cache   *cache.BigCache
}

// NewMetadataService builds the display resolver. A nil fetcher leaves the
// endpoint reporting METADATA_UNAVAILABLE; a nil cache fetches every time.
func NewMetadataService(ledger *database.Ledger, fetcher MetadataFetcher, c *cache.BigCache) *MetadataService {
	return &MetadataService{
		ledger:  ledger,
		fetcher: fetcher,
		cache:   c,
	}
}

func NewMetadataCache(ttlMinutes int) (*cache.BigCache, error) {
	if ttlMinutes <= 0 {
		ttlMinutes = 10
	}
	return cache.NewBigCache(time.Duration(ttlMinutes) * time.Minute)
}

func (s *MetadataService) GetAssetMetadata(ctx context.Context, ipAssetID uint64) (*AssetMetadata, error) {
	var ref string
	var encrypted bool
	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		asset, err := loadAsset(txn.DB, ipAssetID)
		if err != nil {
			return err
		}
		ref, encrypted = asset.MetadataRef, asset.IsEncrypted
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, notFound(CodeMetadataNotFound, "IP asset %d has no metadata reference", ipAssetID)
	}
	if s.fetcher == nil {
		return nil, preconditionFailed(CodeMetadataUnavailable, "metadata resolution is not configured")
	}

	doc, cached, err := s.document(ctx, ref)
	if err != nil {
		return nil, err
	}

	meta, err := ParseMetadata(doc)
	if err != nil {
		return nil, invalidInput(CodeInvalidMetadata, "metadata for IP asset %d: %v", ipAssetID, err)
	}
	meta.IPAssetID = ipAssetID
	meta.MetadataRef = ref
	meta.IsEncrypted = encrypted
	meta.Cached = cached
	return meta, nil
}

func (s *MetadataService) document(ctx context.Context, ref string) ([]byte, bool, error) {
	if s.cache != nil {
		doc, ok, err := s.cache.Get(ref)
		if err != nil {
			logrus.WithError(err).WithField("metadata_ref", ref).Warn("Metadata cache read failed")
		}
		if ok {
			return doc, true, nil
		}
	}

	doc, err := s.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, false, preconditionFailed(CodeMetadataUnavailable, "failed to resolve metadata %s: %v", ref, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ref, doc); err != nil {
			logrus.WithError(err).WithField("metadata_ref", ref).Warn("Metadata cache write failed")
		}
	}
	return doc, false, nil
}

// ParseMetadata extracts the display fields of an ERC-721 style document.
func ParseMetadata(doc []byte) (*AssetMetadata, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("document is not a JSON object")
	}

	meta := &AssetMetadata{
		Name:        root.Get("name").String(),
		Description: root.Get("description").String(),
		Image:       firstOf(root, "image", "image_url"),
		ExternalURL: root.Get("external_url").String(),
		ContentType: firstOf(root, "content_type", "properties.content_type"),
	}
	root.Get("attributes").ForEach(func(_, attr gjson.Result) bool {
		trait := attr.Get("trait_type")
		if !trait.Exists() {
			return true
		}
		meta.Attributes = append(meta.Attributes, MetadataAttribute{
			TraitType: trait.String(),
			Value:     attr.Get("value").String(),
		})
		return true
	})
	return meta, nil
}

func firstOf(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := root.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

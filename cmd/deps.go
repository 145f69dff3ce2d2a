package cmd

import (
	"context"
	"fmt"

	"spacetwo/asset-api/aws"
	"spacetwo/asset-api/db"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/metrics"
	"spacetwo/asset-api/internal/service"
	"spacetwo/asset-api/pkg/middleware"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// targets lists the storage areas in the order they are tried.
func targets() []service.Target {
	return []service.Target{
		{Bucket: viper.GetString("storage.primary_bucket")},
		{Bucket: viper.GetString("storage.fallback_bucket"), Prefix: viper.GetString("storage.fallback_prefix")},
	}
}

func newBlobStore(ctx context.Context, t []service.Target) (blob.Store, error) {
	switch typ := viper.GetString("storage.type"); typ {
	case "s3", "r2":
		c, err := aws.NewS3(ctx, aws.OptionsFromConfig())
		if err != nil {
			return nil, err
		}

		// Missing buckets are not fatal, uploads fall back to the next one
		for _, target := range t {
			if err := aws.CheckBucket(ctx, c, target.Bucket); err != nil {
				zap.L().Warn("Storage bucket not reachable", zap.String("bucket", target.Bucket), zap.Error(err))
			}
		}

		return blob.NewS3(c), nil
	case "minio":
		return blob.NewMinio(blob.MinioOptions{
			Endpoint:  viper.GetString("minio.endpoint"),
			AccessKey: viper.GetString("minio.access_key"),
			SecretKey: viper.GetString("minio.secret_key"),
			UseSSL:    viper.GetBool("minio.use_ssl"),
		})
	case "memory":
		buckets := make([]string, 0, len(t))
		for _, target := range t {
			buckets = append(buckets, target.Bucket)
		}

		zap.L().Warn("Using in-memory blob store, objects are lost on restart")
		return blob.NewMemory(viper.GetString("storage.memory.base_url"), buckets...), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func newVerifier(ctx context.Context) (middleware.Verifier, error) {
	if viper.GetString("auth.mode") == "oidc" {
		return middleware.NewOIDCVerifier(ctx, viper.GetString("auth.oidc_issuer"), viper.GetString("auth.oidc_audience"))
	}

	return middleware.NewHS256Verifier(viper.GetString("auth.jwt_secret")), nil
}

// newDeps connects to every backing service named in the config.
func newDeps(ctx context.Context) (*internal.Deps, error) {
	conn, err := db.New(viper.GetString("db.driver"), viper.GetString("db.dsn"))
	if err != nil {
		return nil, err
	}

	t := targets()

	blobs, err := newBlobStore(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store, %w", err)
	}

	verifier, err := newVerifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity verifier, %w", err)
	}

	var o metrics.Observer = metrics.Nop()
	if viper.GetBool("metrics.enabled") {
		po, err := metrics.NewPrometheusObserver("", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics, %w", err)
		}
		o = po
	}

	return internal.NewDeps(conn, blobs, verifier, o, internal.Options{
		Targets:     t,
		UploadTTL:   viper.GetDuration("storage.upload_url_ttl"),
		ReadTTL:     viper.GetDuration("storage.read_url_ttl"),
		Placeholder: viper.GetString("storage.placeholder"),
		SweepGrace:  viper.GetDuration("cleanup.grace"),
		Thumbnailer: service.NoopThumbnailer{},

		MaxUploadSize:    viper.GetInt64("upload.max_size"),
		FFmpegThumbnails: viper.GetBool("thumbnail.ffmpeg"),
	}), nil
}

package config

const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMinio = "minio"
)

type StorageConfig struct {
	Mode string
	// MediaURLPrefix is prepended to stored paths to build public urls
	MediaURLPrefix string
	UploadDir      string
	S3             S3Config
	Minio          MinioConfig
}

type S3Config struct {
	Region string
	Bucket string
	Prefix string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:           getEnv("STORAGE_MODE", StorageLocal),
		MediaURLPrefix: getEnv("MEDIA_URL_PREFIX", "media"),
		UploadDir:      getEnv("UPLOAD_DIR", "./media"),
		S3: S3Config{
			Region: getEnv("AWS_REGION", "us-east-1"),
			Bucket: getEnv("AWS_BUCKET", "peekpa-media"),
			Prefix: getEnv("AWS_PREFIX", ""),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "peekpa-media"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage driver names accepted by STORAGE_DRIVER.
const (
	StorageDriverLocal      = "local"
	StorageDriverCloudinary = "cloudinary"
	StorageDriverFTP        = "ftp"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Admin         AdminConfig
	School        SchoolConfig
	Storage       StorageConfig
	Mail          MailConfig
	Notifications NotificationsConfig
	Uploads       UploadsConfig
	Settings      SettingsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig holds the static bearer token guarding registrar endpoints.
type AdminConfig struct {
	Token string
}

// SchoolConfig carries institution constants used by the workflow.
type SchoolConfig struct {
	Name            string
	ReferencePrefix string
	ContactEmail    string
}

// StorageConfig selects the blob storage backend for uploaded documents.
type StorageConfig struct {
	Driver string

	LocalDir       string
	LocalPublicURL string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	FTPHost      string
	FTPUser      string
	FTPPassword  string
	FTPRemoteDir string
	FTPPublicURL string
}

// MailConfig configures the confirmation mailer.
type MailConfig struct {
	Driver         string
	SendgridAPIKey string
	FromName       string
	FromAddress    string
}

// NotificationsConfig tunes the background email dispatcher.
type NotificationsConfig struct {
	Workers     int
	MaxRetries  int
	RetryDelay  time.Duration
	SendTimeout time.Duration
}

// UploadsConfig bounds document uploads.
type UploadsConfig struct {
	MaxFileSizeBytes int64
	UploadTimeout    time.Duration
}

// SettingsConfig tunes the enrollment-window settings cache.
type SettingsConfig struct {
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Admin = AdminConfig{Token: v.GetString("ADMIN_TOKEN")}

	cfg.School = SchoolConfig{
		Name:            v.GetString("SCHOOL_NAME"),
		ReferencePrefix: v.GetString("SCHOOL_REFERENCE_PREFIX"),
		ContactEmail:    v.GetString("SCHOOL_CONTACT_EMAIL"),
	}

	cfg.Storage = StorageConfig{
		Driver:              strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LocalDir:            v.GetString("STORAGE_LOCAL_DIR"),
		LocalPublicURL:      v.GetString("STORAGE_LOCAL_PUBLIC_URL"),
		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    v.GetString("CLOUDINARY_FOLDER"),
		FTPHost:             v.GetString("FTP_HOST"),
		FTPUser:             v.GetString("FTP_USER"),
		FTPPassword:         v.GetString("FTP_PASSWORD"),
		FTPRemoteDir:        v.GetString("FTP_REMOTE_DIR"),
		FTPPublicURL:        v.GetString("FTP_PUBLIC_URL"),
	}

	cfg.Mail = MailConfig{
		Driver:         strings.ToLower(v.GetString("MAIL_DRIVER")),
		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromName:       v.GetString("MAIL_FROM_NAME"),
		FromAddress:    v.GetString("MAIL_FROM_ADDRESS"),
	}

	cfg.Notifications = NotificationsConfig{
		Workers:     v.GetInt("NOTIFICATIONS_WORKERS"),
		MaxRetries:  v.GetInt("NOTIFICATIONS_MAX_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("NOTIFICATIONS_RETRY_DELAY"), 5*time.Second),
		SendTimeout: parseDuration(v.GetString("NOTIFICATIONS_SEND_TIMEOUT"), 15*time.Second),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		MaxFileSizeBytes: maxUploadSize,
		UploadTimeout:    parseDuration(v.GetString("UPLOADS_TIMEOUT"), 30*time.Second),
	}

	cfg.Settings = SettingsConfig{
		CacheTTL: parseDuration(v.GetString("SETTINGS_CACHE_TTL"), time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "svshs_enrollment")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_TOKEN", "dev_admin_token")

	v.SetDefault("SCHOOL_NAME", "San Vicente Senior High School")
	v.SetDefault("SCHOOL_REFERENCE_PREFIX", "SV8BSHS")
	v.SetDefault("SCHOOL_CONTACT_EMAIL", "svshs.enrollment@gmail.com")

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_LOCAL_PUBLIC_URL", "/uploads")
	v.SetDefault("CLOUDINARY_FOLDER", "enrollments")
	v.SetDefault("FTP_REMOTE_DIR", "/public_html/enrollment/uploads")

	v.SetDefault("MAIL_DRIVER", "console")
	v.SetDefault("MAIL_FROM_NAME", "Enrollment System")
	v.SetDefault("MAIL_FROM_ADDRESS", "no-reply@sv8bshs.site")

	v.SetDefault("NOTIFICATIONS_WORKERS", 1)
	v.SetDefault("NOTIFICATIONS_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "5s")
	v.SetDefault("NOTIFICATIONS_SEND_TIMEOUT", "15s")

	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOADS_TIMEOUT", "30s")

	v.SetDefault("SETTINGS_CACHE_TTL", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

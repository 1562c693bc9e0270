package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	defaultMongoURI    = "mongodb://localhost:27017"
	defaultMongoDB     = "tomato"
	defaultRedisAddr   = "localhost:6379"
	defaultJWTSecret   = "change-me-in-production"
	defaultAppPort     = "4000"
	defaultAppEnv      = "local"
	defaultFrontendURL = "http://localhost:5173"
	defaultDeliveryFee = "0"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, .env and the process environment into the
// config map. Later sources win. Safe to call from anywhere; the work
// happens once.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFrom("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGO_URI":    defaultMongoURI,
		"MONGO_DB":     defaultMongoDB,
		"REDIS_ADDR":   defaultRedisAddr,
		"JWT_SECRET":   defaultJWTSecret,
		"APP_PORT":     defaultAppPort,
		"APP_ENV":      defaultAppEnv,
		"FRONTEND_URL": defaultFrontendURL,
		"DELIVERY_FEE": defaultDeliveryFee,
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDB() string {
	_ = Load()
	return get("MONGO_DB", defaultMongoDB)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func FrontendURL() string {
	_ = Load()
	return get("FRONTEND_URL", defaultFrontendURL)
}

// DeliveryFee is added on top of the item total at checkout. Off by
// default, so the order total equals the sum of the snapshotted item
// prices unless a fee is configured.
func DeliveryFee() float64 {
	_ = Load()
	f, err := strconv.ParseFloat(get("DELIVERY_FEE", defaultDeliveryFee), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "uploads")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:4000/images")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Payment gateway ──────────────────────────────────────────────────────────

func PaymentBaseURL() string {
	_ = Load()
	return get("PAYMENT_BASE_URL", "https://api.sandbox.payments.example.com")
}

func PaymentClientID() string     { _ = Load(); return get("PAYMENT_CLIENT_ID", "") }
func PaymentClientSecret() string { _ = Load(); return get("PAYMENT_CLIENT_SECRET", "") }

// PaymentWebhookSecret signs gateway callbacks. Empty disables the
// signature check (development only).
func PaymentWebhookSecret() string { _ = Load(); return get("PAYMENT_WEBHOOK_SECRET", "") }

// ── Typed snapshot ───────────────────────────────────────────────────────────

// Config is an immutable snapshot of everything the application layer needs.
// Built once at startup by App() and passed into services by injection, so
// business logic never reads the environment directly.
type Config struct {
	Env         string
	Port        string
	MongoURI    string
	MongoDB     string
	RedisAddr   string
	JWTSecret   string
	FrontendURL string
	DeliveryFee float64

	PaymentBaseURL       string
	PaymentClientID      string
	PaymentClientSecret  string
	PaymentWebhookSecret string
}

// App builds the typed configuration snapshot.
func App() Config {
	_ = Load()
	return Config{
		Env:         AppEnv(),
		Port:        AppPort(),
		MongoURI:    MongoURI(),
		MongoDB:     MongoDB(),
		RedisAddr:   RedisAddr(),
		JWTSecret:   JWTSecret(),
		FrontendURL: FrontendURL(),
		DeliveryFee: DeliveryFee(),

		PaymentBaseURL:       PaymentBaseURL(),
		PaymentClientID:      PaymentClientID(),
		PaymentClientSecret:  PaymentClientSecret(),
		PaymentWebhookSecret: PaymentWebhookSecret(),
	}
}

// ── Loading internals ────────────────────────────────────────────────────────

func loadFrom(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	// The real environment always wins over files.
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, known := loaded[strings.ToUpper(key)]; known || isAppKey(key) {
			loaded[strings.ToUpper(key)] = value
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

// isAppKey reports whether an environment variable belongs to this app's
// namespace even when it has no default entry.
func isAppKey(key string) bool {
	k := strings.ToUpper(key)
	for _, prefix := range []string{"MONGO_", "REDIS_", "S3_", "STORAGE_", "PAYMENT_", "MAIL_", "SLACK_", "APP_", "JWT_", "LOG_"} {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env, app.json and the environment are available after Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	SMTP          SMTPConfig
	Storage       StorageConfig
	Verification  VerificationConfig
	Contracts     ContractsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ARMORY_APP_ENV" required:"true"`
	Port         string `envconfig:"ARMORY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARMORY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARMORY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARMORY_DB_DSN"`
	Driver string `envconfig:"ARMORY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ARMORY_DB_HOST"`
	Port     int    `envconfig:"ARMORY_DB_PORT" default:"5432"`
	User     string `envconfig:"ARMORY_DB_USER"`
	Password string `envconfig:"ARMORY_DB_PASSWORD"`
	Name     string `envconfig:"ARMORY_DB_NAME"`
	SSLMode  string `envconfig:"ARMORY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARMORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARMORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARMORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARMORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARMORY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ARMORY_REDIS_ADDR"`
	Password     string        `envconfig:"ARMORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARMORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARMORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARMORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARMORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARMORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARMORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARMORY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARMORY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ARMORY_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"ARMORY_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARMORY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARMORY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARMORY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARMORY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARMORY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ARMORY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"ARMORY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ARMORY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ARMORY_AUTO_MIGRATE" default:"false"`
}

type SMTPConfig struct {
	Host        string `envconfig:"ARMORY_SMTP_HOST"`
	Port        int    `envconfig:"ARMORY_SMTP_PORT" default:"587"`
	Username    string `envconfig:"ARMORY_SMTP_USERNAME"`
	Password    string `envconfig:"ARMORY_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"ARMORY_SMTP_FROM" default:"no-reply@armeria.local"`
}

// Enabled reports whether outbound email is configured.
func (s SMTPConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

type StorageConfig struct {
	Root string `envconfig:"ARMORY_STORAGE_ROOT" default:"./data/files"`
}

type VerificationConfig struct {
	TokenTTL time.Duration `envconfig:"ARMORY_VERIFICATION_TOKEN_TTL" default:"24h"`
	BaseURL  string        `envconfig:"ARMORY_VERIFICATION_BASE_URL" default:"http://localhost:8080"`
}

type ContractsConfig struct {
	IssuerName string `envconfig:"ARMORY_CONTRACT_ISSUER" default:"Armeria Importaciones"`
	CityLine   string `envconfig:"ARMORY_CONTRACT_CITY" default:"Quito, Ecuador"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

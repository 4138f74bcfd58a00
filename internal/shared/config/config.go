package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Payroll PayrollConfig `mapstructure:"payroll"`
	Loan    LoanConfig    `mapstructure:"loan"`
	Outbox  OutboxConfig  `mapstructure:"outbox"`
}

// HTTPConfig.IdempotencyTTL bounds how long a repeated Idempotency-Key is
// rejected while the first request is still running.
type HTTPConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

type DBConfig struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	Port       string `mapstructure:"port"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxRetries int    `mapstructure:"max_retries"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type KafkaConfig struct {
	Broker  string `mapstructure:"broker"`
	GroupID string `mapstructure:"group_id"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type PayrollConfig struct {
	// Workers bounds concurrent per-employee calculations in one run.
	Workers            int           `mapstructure:"workers"`
	PersistenceTimeout time.Duration `mapstructure:"persistence_timeout"`
	RunLockTTL         time.Duration `mapstructure:"run_lock_ttl"`
}

type LoanConfig struct {
	AdvanceCapRaw      string          `mapstructure:"advance_cap"`
	AdvanceCap         decimal.Decimal `mapstructure:"-"`
	DefaultThreshold   int             `mapstructure:"default_threshold"`
	// GraceDays delays the sweep so deductions approved late in a period
	// are not flagged as missed before the salary is paid.
	GraceDays          int             `mapstructure:"grace_days"`
	SweepInterval      time.Duration   `mapstructure:"sweep_interval"`
	PersistenceTimeout time.Duration   `mapstructure:"persistence_timeout"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "3000")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.idempotency_ttl", 15*time.Minute)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "payroll")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_retries", 5)

	v.SetDefault("redis.addr", "")
	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.group_id", "go-payroll")
	v.SetDefault("jwt.secret", "")

	v.SetDefault("payroll.workers", 8)
	v.SetDefault("payroll.persistence_timeout", 5*time.Second)
	v.SetDefault("payroll.run_lock_ttl", 15*time.Minute)

	v.SetDefault("loan.advance_cap", "500000.00")
	v.SetDefault("loan.default_threshold", 3)
	v.SetDefault("loan.grace_days", 7)
	v.SetDefault("loan.sweep_interval", time.Hour)
	v.SetDefault("loan.persistence_timeout", 5*time.Second)

	v.SetDefault("outbox.poll_interval", 3*time.Second)
	v.SetDefault("outbox.batch_size", 50)
}

// Load reads .env (if present) and the process environment. Keys map to
// upper-case env names with dots replaced by underscores, e.g. PAYROLL_WORKERS.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	advanceCap, err := decimal.NewFromString(c.Loan.AdvanceCapRaw)
	if err != nil {
		return fmt.Errorf("invalid LOAN_ADVANCE_CAP %q: %w", c.Loan.AdvanceCapRaw, err)
	}
	if !advanceCap.IsPositive() {
		return errors.New("LOAN_ADVANCE_CAP must be positive")
	}
	c.Loan.AdvanceCap = advanceCap

	if c.Payroll.Workers < 1 {
		return errors.New("PAYROLL_WORKERS must be at least 1")
	}
	if c.Loan.GraceDays < 0 {
		return errors.New("LOAN_GRACE_DAYS must not be negative")
	}
	if c.Loan.DefaultThreshold < 1 {
		return errors.New("LOAN_DEFAULT_THRESHOLD must be at least 1")
	}
	return nil
}

package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	SourceDB  DatabaseConfig
	TargetDB  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Migration MigrationConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey     string // JWT密钥
	TokenDuration string // 令牌有效期，如 "24h"
}

type LogConfig struct {
	Level      string
	FilePath   string
	MaxSize    int    // MB
	MaxBackups int    // 保留的备份文件数
	MaxAge     int    // 保留天数
	Compress   bool   // 是否压缩
	Format     string // json 或 text
}

type AdminConfig struct {
	Username     string // 迁移操作员账号
	PasswordHash string // bcrypt密码哈希
}

type CORSConfig struct {
	AllowOrigins     []string // 允许的源
	AllowMethods     []string // 允许的HTTP方法
	AllowHeaders     []string // 允许的请求头
	ExposeHeaders    []string // 暴露的响应头
	AllowCredentials bool     // 是否允许携带凭证
	MaxAge           int      // 预检请求缓存时间（小时）
}

// MigrationConfig 迁移引擎配置
type MigrationConfig struct {
	Env              string    // 运行环境：production / migration / staging
	Production       bool      // 是否生产环境（单租户成功后标记已上线）
	CutoverDate      time.Time // 数据截止日期，早于该日期的源记录不迁移
	PriorityPortals  []uint    // 全量迁移的租户优先级顺序（显式白名单）
	TestEmailDomains []string  // 内部测试邮箱域名，这些用户不迁移
	AdminRoleIDs     []int64   // 源库管理员角色ID
	ClinicianRoleIDs []int64   // 源库临床人员角色ID
	BatchCron        string    // 全量迁移cron表达式，为空则不调度
}

// 运行环境常量
const (
	EnvProduction = "production"
	// EnvMigration 允许全量迁移的专用环境
	EnvMigration = "migration"
)

// 全局配置实例和同步锁
var (
	globalConfig *Config
	once         sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		var err error
		globalConfig, err = LoadConfig()
		if err != nil {
			// 如果加载失败，可以panic或使用默认配置
			panic("Failed to load config: " + err.Error())
		}
	})
	return globalConfig
}

// 获取环境变量，如果不存在则使用默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 获取环境变量转换为int
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 获取环境变量转换为bool
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

// 获取环境变量转换为字符串数组（逗号分隔）
func getEnvAsStringArray(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// 处理逗号分隔的字符串，去除空格
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultValue
}

// 获取环境变量转换为uint数组（逗号分隔）
func getEnvAsUintArray(key string, defaultValue []uint) []uint {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]uint, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if n, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
				result = append(result, uint(n))
			}
		}
		return result
	}
	return defaultValue
}

// 获取环境变量转换为int64数组（逗号分隔）
func getEnvAsInt64Array(key string, defaultValue []int64) []int64 {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]int64, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
				result = append(result, n)
			}
		}
		return result
	}
	return defaultValue
}

// 获取环境变量转换为日期（格式 2006-01-02）
func getEnvAsDate(key string, defaultValue time.Time) time.Time {
	if value := os.Getenv(key); value != "" {
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t
		}
	}
	return defaultValue
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Mode: getEnv("SERVER_MODE", "debug"),
		},
		SourceDB: DatabaseConfig{
			Host:     getEnv("SOURCE_DB_HOST", "localhost"),
			Port:     getEnv("SOURCE_DB_PORT", "5432"),
			User:     getEnv("SOURCE_DB_USER", "postgres"),
			Password: getEnv("SOURCE_DB_PASSWORD", ""),
			DBName:   getEnv("SOURCE_DB_NAME", "legacy_training"),
			SSLMode:  getEnv("SOURCE_DB_SSLMODE", "disable"),
		},
		TargetDB: DatabaseConfig{
			Host:     getEnv("TARGET_DB_HOST", "localhost"),
			Port:     getEnv("TARGET_DB_PORT", "5432"),
			User:     getEnv("TARGET_DB_USER", "postgres"),
			Password: getEnv("TARGET_DB_PASSWORD", ""),
			DBName:   getEnv("TARGET_DB_NAME", "content_platform"),
			SSLMode:  getEnv("TARGET_DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:     getEnv("JWT_SECRET_KEY", "default-secret-change-me"),
			TokenDuration: getEnv("JWT_TOKEN_DURATION", "24h"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE_PATH", "logs/app.log"),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 7),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE", 30),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
			Format:     getEnv("LOG_FORMAT", "json"),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		CORS: CORSConfig{
			AllowOrigins:     getEnvAsStringArray("CORS_ALLOW_ORIGINS", []string{"*"}),
			AllowMethods:     getEnvAsStringArray("CORS_ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			AllowHeaders:     getEnvAsStringArray("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"}),
			ExposeHeaders:    getEnvAsStringArray("CORS_EXPOSE_HEADERS", []string{"Content-Length", "Content-Type"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 12),
		},
		Migration: MigrationConfig{
			Env:              getEnv("MIGRATION_ENV", "staging"),
			Production:       getEnvAsBool("MIGRATION_PRODUCTION", false),
			CutoverDate:      getEnvAsDate("MIGRATION_CUTOVER_DATE", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)),
			PriorityPortals:  getEnvAsUintArray("MIGRATION_PRIORITY_PORTALS", nil),
			TestEmailDomains: getEnvAsStringArray("MIGRATION_TEST_EMAIL_DOMAINS", []string{"example-internal.com"}),
			AdminRoleIDs:     getEnvAsInt64Array("MIGRATION_ADMIN_ROLE_IDS", []int64{1}),
			ClinicianRoleIDs: getEnvAsInt64Array("MIGRATION_CLINICIAN_ROLE_IDS", []int64{2, 3}),
			BatchCron:        getEnv("MIGRATION_BATCH_CRON", ""),
		},
	}

	return config, nil
}

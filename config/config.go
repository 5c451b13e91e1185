package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Các giá trị của STORE_DRIVER
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	Address     string `env:"ADDRESS" envDefault:"8080"`                       // Cổng server
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"` // URL frontend (link reset mật khẩu)

	// JWT
	JwtSecret     string `env:"JWT_SECRET,required"`                 // Bí mật JWT
	JwtAccessTTL  int    `env:"JWT_ACCESS_TTL" envDefault:"3600"`    // Giây
	JwtRefreshTTL int    `env:"JWT_REFRESH_TTL" envDefault:"604800"` // Giây (7 ngày)

	// Storage
	StoreDriver           string `env:"STORE_DRIVER" envDefault:"mongo"` // mongo | memory
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI"`          // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"content_studio"`

	// Cache (để trống REDIS_ADDR thì dùng cache trong bộ nhớ)
	Redis_Addr     string `env:"REDIS_ADDR"`
	Redis_Password string `env:"REDIS_PASSWORD"`
	Redis_DB       int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTL       int    `env:"CACHE_TTL" envDefault:"300"` // Giây

	// LLM
	LLM_APIURL  string `env:"LLM_API_URL" envDefault:"https://api.openai.com/v1"`
	LLM_APIKey  string `env:"LLM_API_KEY"`
	LLM_Model   string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLM_Timeout int    `env:"LLM_TIMEOUT" envDefault:"10"` // Giây

	// Design tool
	Design_APIURL  string `env:"DESIGN_API_URL" envDefault:"https://api.figma.com"`
	Design_Timeout int    `env:"DESIGN_TIMEOUT" envDefault:"10"` // Giây

	// SMTP (để trống SMTP_HOST thì email chỉ được ghi log)
	SMTP_Host     string `env:"SMTP_HOST"`
	SMTP_Port     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTP_Username string `env:"SMTP_USERNAME"`
	SMTP_Password string `env:"SMTP_PASSWORD"`
	SMTP_From     string `env:"SMTP_FROM" envDefault:"no-reply@content-studio.local"`

	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	ScheduleWorkerInterval int    `env:"SCHEDULE_WORKER_INTERVAL" envDefault:"30"`      // Giây
	ReportTimezone         string `env:"REPORT_TIMEZONE" envDefault:"Asia/Ho_Chi_Minh"` // Múi giờ cắt ngày / tuần / tháng cho analytics
	MetricsEnabled         bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Đi ngược lên cho tới khi gặp config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc file env (nếu có) rồi parse biến môi trường vào Configuration.
// Biến môi trường đã set sẵn luôn được ưu tiên hơn giá trị trong file.
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Configuration) validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoDB_ConnectionURI == "" {
			return fmt.Errorf("MONGODB_CONNECTION_URI is required when STORE_DRIVER=mongo")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if len(c.JwtSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return nil
}

package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig locates the SQLite article database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds redis connection settings. Redis is optional; when an
// address is configured it backs the cross-process stage locks.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenAIConfig controls the discovery/analysis/generation collaborator.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// WordPressConfig controls the primary publication channel.
type WordPressConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// FacebookConfig controls the Facebook page channel.
type FacebookConfig struct {
	AccessToken string `mapstructure:"access_token"`
	PageID      string `mapstructure:"page_id"`
	APIVersion  string `mapstructure:"api_version"`
}

// InstagramConfig controls the Instagram channel. Posts require an image
// asset; without one the channel is skipped.
type InstagramConfig struct {
	AccessToken string `mapstructure:"access_token"`
	AccountID   string `mapstructure:"account_id"`
	APIVersion  string `mapstructure:"api_version"`
}

// ClockTime is a daily wall-clock trigger time.
type ClockTime struct {
	Hour   int `mapstructure:"hour"`
	Minute int `mapstructure:"minute"`
}

// ScheduleConfig sets the daily trigger time per stage.
type ScheduleConfig struct {
	Search    ClockTime `mapstructure:"search"`
	Blog      ClockTime `mapstructure:"blog"`
	Facebook  ClockTime `mapstructure:"facebook"`
	Instagram ClockTime `mapstructure:"instagram"`
}

// PublishingConfig controls gating and pacing of the pipeline stages.
type PublishingConfig struct {
	MaxPerDay    int     `mapstructure:"max_per_day"`
	MinScore     float64 `mapstructure:"min_score"`
	SearchDelay  string  `mapstructure:"search_delay"`  // duration string, e.g. "2s"
	PublishDelay string  `mapstructure:"publish_delay"` // duration string, e.g. "5s"
	ArchiveDir   string  `mapstructure:"archive_dir"`
}

// Config is the top-level configuration structure. It is loaded once at
// startup and passed into component constructors; nothing reads it ambiently.
type Config struct {
	App        AppConfig         `mapstructure:"app"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Redis      RedisConfig       `mapstructure:"redis"`
	OpenAI     OpenAIConfig      `mapstructure:"openai"`
	WordPress  WordPressConfig   `mapstructure:"wordpress"`
	Facebook   FacebookConfig    `mapstructure:"facebook"`
	Instagram  InstagramConfig   `mapstructure:"instagram"`
	Schedule   ScheduleConfig    `mapstructure:"schedule"`
	Publishing PublishingConfig  `mapstructure:"publishing"`
	Keywords   []string          `mapstructure:"keywords"`
	Services   map[string]string `mapstructure:"services"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/articles.db"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Facebook.APIVersion == "" {
		c.Facebook.APIVersion = "v18.0"
	}
	if c.Instagram.APIVersion == "" {
		c.Instagram.APIVersion = "v18.0"
	}
	if c.Schedule.Search == (ClockTime{}) {
		c.Schedule.Search = ClockTime{Hour: 9}
	}
	if c.Schedule.Blog == (ClockTime{}) {
		c.Schedule.Blog = ClockTime{Hour: 10}
	}
	if c.Schedule.Facebook == (ClockTime{}) {
		c.Schedule.Facebook = ClockTime{Hour: 12}
	}
	if c.Schedule.Instagram == (ClockTime{}) {
		c.Schedule.Instagram = ClockTime{Hour: 14}
	}
	if c.Publishing.MaxPerDay == 0 {
		c.Publishing.MaxPerDay = 5
	}
	if c.Publishing.MinScore == 0 {
		c.Publishing.MinScore = 7.0
	}
	if c.Publishing.SearchDelay == "" {
		c.Publishing.SearchDelay = "2s"
	}
	if c.Publishing.PublishDelay == "" {
		c.Publishing.PublishDelay = "5s"
	}
	if c.Publishing.ArchiveDir == "" {
		c.Publishing.ArchiveDir = "./archive"
	}
}

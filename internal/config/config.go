package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageConfig locates the calendar artifacts. Root is a directory (or
// mount point) under which the raw/ and merged/ prefixes live; the store
// itself only sees keys.
type StorageConfig struct {
	Root         string `yaml:"root" json:"root"`
	RawPrefix    string `yaml:"raw_prefix" json:"raw_prefix"`
	MergedPrefix string `yaml:"merged_prefix" json:"merged_prefix"`
}

// AcademicConfig configures the academic-calendar crawler.
type AcademicConfig struct {
	URL       string `yaml:"url" json:"url"`
	OutputKey string `yaml:"output_key" json:"output_key"`
}

// NoticesConfig configures the student-council notices crawler. The
// notice board is a JS-rendered app, so pages go through headless
// Chromium rather than a plain GET.
type NoticesConfig struct {
	URL       string   `yaml:"url" json:"url"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
	Pages     int      `yaml:"pages" json:"pages"`
	OutputKey string   `yaml:"output_key" json:"output_key"`
}

// ScholarshipConfig configures the scholarship-notice crawler.
type ScholarshipConfig struct {
	ListURL          string   `yaml:"list_url" json:"list_url"`
	LinkSelectors    []string `yaml:"link_selectors" json:"link_selectors"`
	ContentSelectors []string `yaml:"content_selectors" json:"content_selectors"`
	LabelKeywords    []string `yaml:"label_keywords" json:"label_keywords"`
	MaxConcurrency   int      `yaml:"max_concurrency" json:"max_concurrency"`
	OutputKey        string   `yaml:"output_key" json:"output_key"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone all resolved dates are anchored to.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Schedule is a cron expression for daemon mode.
	Schedule string `yaml:"schedule" json:"schedule"`

	// DurationThresholdDays controls when a long span is split into
	// start/deadline marker events.
	DurationThresholdDays int `yaml:"duration_threshold_days" json:"duration_threshold_days"`

	// WindowMonths is the forward-looking staleness window: current
	// month through WindowMonths months ahead.
	WindowMonths int `yaml:"window_months" json:"window_months"`

	// FetchTimeoutSeconds bounds a single page fetch.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`

	Storage     StorageConfig     `yaml:"storage" json:"storage"`
	Academic    AcademicConfig    `yaml:"academic" json:"academic"`
	Notices     NoticesConfig     `yaml:"notices" json:"notices"`
	Scholarship ScholarshipConfig `yaml:"scholarship" json:"scholarship"`
}

// DefaultConfig returns an in-memory default configuration pointing at
// the known Soongsil pages.
func DefaultConfig() *Config {
	return &Config{
		Timezone:              "Asia/Seoul",
		Schedule:              "0 6 * * *",
		DurationThresholdDays: 7,
		WindowMonths:          3,
		FetchTimeoutSeconds:   30,
		Storage: StorageConfig{
			Root:         "./var/calendars",
			RawPrefix:    "raw/",
			MergedPrefix: "merged/",
		},
		Academic: AcademicConfig{
			URL:       "https://ssu.ac.kr/%ED%95%99%EC%82%AC/%ED%95%99%EC%82%AC%EC%9D%BC%EC%A0%95/",
			OutputKey: "raw/academy_calendar.ics",
		},
		Notices: NoticesConfig{
			URL:       "https://stu.ssu.ac.kr/notice?category=중앙&sub=총학생회",
			Keywords:  []string{"예비군", "장학", "특식", "개강", "주차"},
			Pages:     1,
			OutputKey: "raw/my.ics",
		},
		Scholarship: ScholarshipConfig{
			ListURL: "https://scatch.ssu.ac.kr/%EA%B3%B5%EC%A7%80%EC%82%AC%ED%95%AD/?category=%EC%9E%A5%ED%95%99&f=all&keyword=%E2%98%85",
			LinkSelectors: []string{
				"a.text-decoration-none.d-block.text-truncate",
			},
			ContentSelectors: []string{
				"#contents",
				"div.bg-white.p-4.mb-5 > div",
				"div.bg-white",
			},
			LabelKeywords:  []string{"접수기한", "접수기간", "제출기간", "제출기한", "서류심사"},
			MaxConcurrency: 10,
			OutputKey:      "raw/scholarships.ics",
		},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Schedule == "" {
		c.Schedule = def.Schedule
	}
	if c.DurationThresholdDays <= 0 {
		c.DurationThresholdDays = def.DurationThresholdDays
	}
	if c.WindowMonths <= 0 {
		c.WindowMonths = def.WindowMonths
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = def.FetchTimeoutSeconds
	}
	if c.Storage.Root == "" {
		c.Storage.Root = def.Storage.Root
	}
	if c.Storage.RawPrefix == "" {
		c.Storage.RawPrefix = def.Storage.RawPrefix
	}
	if c.Storage.MergedPrefix == "" {
		c.Storage.MergedPrefix = def.Storage.MergedPrefix
	}
	if c.Academic.URL == "" {
		c.Academic = def.Academic
	}
	if c.Academic.OutputKey == "" {
		c.Academic.OutputKey = def.Academic.OutputKey
	}
	if c.Notices.URL == "" {
		c.Notices.URL = def.Notices.URL
	}
	if c.Notices.Keywords == nil {
		c.Notices.Keywords = def.Notices.Keywords
	}
	if c.Notices.Pages <= 0 {
		c.Notices.Pages = def.Notices.Pages
	}
	if c.Notices.OutputKey == "" {
		c.Notices.OutputKey = def.Notices.OutputKey
	}
	if c.Scholarship.ListURL == "" {
		c.Scholarship.ListURL = def.Scholarship.ListURL
	}
	if c.Scholarship.LinkSelectors == nil {
		c.Scholarship.LinkSelectors = def.Scholarship.LinkSelectors
	}
	if c.Scholarship.ContentSelectors == nil {
		c.Scholarship.ContentSelectors = def.Scholarship.ContentSelectors
	}
	if c.Scholarship.LabelKeywords == nil {
		c.Scholarship.LabelKeywords = def.Scholarship.LabelKeywords
	}
	if c.Scholarship.MaxConcurrency <= 0 {
		c.Scholarship.MaxConcurrency = def.Scholarship.MaxConcurrency
	}
	if c.Scholarship.OutputKey == "" {
		c.Scholarship.OutputKey = def.Scholarship.OutputKey
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FetchTimeout returns the per-page fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed,
//     write a default config with 0600 perms, return the default.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename, 0600 final permissions).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ssutime-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

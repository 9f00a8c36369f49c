package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLoginURL = "https://ralevon.fyi/login"
	DefaultBookURL  = "https://ralevon.fyi/book/FnQRiP5O1X4jkcz3"
	DefaultAuthor   = "Miya Kazuki - You Shiina"
	DefaultOutput   = "epubs"
	DefaultLanguage = "es"
	DefaultTimeout  = 60 * time.Second
)

type Config struct {
	Output         string `yaml:"output"`
	LoginURL       string `yaml:"login_url"`
	BookURL        string `yaml:"book_url"`
	Author         string `yaml:"author"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Debug          bool   `yaml:"debug"`

	ShowBrowser bool   `yaml:"show_browser"`
	BrowserBin  string `yaml:"browser_bin"`

	NoImages     bool   `yaml:"no_images"`
	ImageWorkers int    `yaml:"image_workers"`
	UserAgent    string `yaml:"user_agent"`

	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`
}

type Options struct {
	IgnoreConfig   bool
	Debug          bool
	Output         string
	LoginURL       string
	BookURL        string
	Author         string
	TimeoutSeconds int
	ShowBrowser    bool
	BrowserBin     string
	NoImages       bool
	ImageWorkers   int
	UserAgent      string
	DefaultRange   string
	DefaultList    string
}

func DefaultConfig() *Config {
	return &Config{
		Output:         DefaultOutput,
		LoginURL:       DefaultLoginURL,
		BookURL:        DefaultBookURL,
		Author:         DefaultAuthor,
		Language:       DefaultLanguage,
		TimeoutSeconds: int(DefaultTimeout / time.Second),
		Debug:          false,
		ShowBrowser:    false,
		BrowserBin:     "",
		NoImages:       false,
		ImageWorkers:   4,
		UserAgent:      "",
		DefaultRange:   "",
		DefaultList:    "",
	}
}

// Timeout is the limit applied to every single browser operation.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}

	return time.Duration(c.TimeoutSeconds) * time.Second
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.LoginURL != "" {
		c.LoginURL = o.LoginURL
	}
	if o.BookURL != "" {
		c.BookURL = o.BookURL
	}
	if o.Author != "" {
		c.Author = o.Author
	}
	if o.TimeoutSeconds != 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.Debug {
		c.Debug = true
	}
	if o.ShowBrowser {
		c.ShowBrowser = true
	}
	if o.BrowserBin != "" {
		c.BrowserBin = o.BrowserBin
	}
	if o.NoImages {
		c.NoImages = true
	}
	if o.ImageWorkers != 0 {
		c.ImageWorkers = o.ImageWorkers
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.DefaultRange != "" {
		c.DefaultRange = o.DefaultRange
	}
	if o.DefaultList != "" {
		c.DefaultList = o.DefaultList
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.LoginURL == "" {
		c.LoginURL = DefaultLoginURL
	}
	if c.BookURL == "" {
		c.BookURL = DefaultBookURL
	}
	if c.Author == "" {
		c.Author = DefaultAuthor
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(DefaultTimeout / time.Second)
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = 4
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -login_url: %s\n", c.LoginURL)
	fmt.Printf(" -book_url: %s\n", c.BookURL)
	fmt.Printf(" -author: %s\n", c.Author)
	fmt.Printf(" -language: %s\n", c.Language)
	fmt.Printf(" -timeout: %s\n", c.Timeout())
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.ShowBrowser {
		fmt.Printf(" -show_browser: %t\n", c.ShowBrowser)
	}
	if c.BrowserBin != "" {
		fmt.Printf(" -browser_bin: %s\n", c.BrowserBin)
	}
	if c.NoImages {
		fmt.Printf(" -no_images: %t\n", c.NoImages)
	} else {
		fmt.Printf(" -image_workers: %d\n", c.ImageWorkers)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.DefaultRange != "" {
		fmt.Printf(" -range: %s\n", c.DefaultRange)
	}
	if c.DefaultList != "" {
		fmt.Printf(" -list: %s\n", c.DefaultList)
	}
}

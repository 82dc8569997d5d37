package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Tournament levels recognized by the FIRST Events API.
const (
	LevelPractice      = "practice"
	LevelQualification = "qualification"
)

const defaultBaseURL = "https://frc-api.firstinspires.org/v3.0"

type Event struct {
	Season          int    `yaml:"season"`
	Code            string `yaml:"code"`
	TournamentLevel string `yaml:"tournament_level"`
}

type API struct {
	BaseURL string `yaml:"base_url"`
}

type Rules struct {
	MinMembersPerTeam int `yaml:"min_members_per_team"`
	MinTeamsPerMember int `yaml:"min_teams_per_member"`
}

type Breaks struct {
	LunchGapMinutes int `yaml:"lunch_gap_minutes"`
	ShortGapMinutes int `yaml:"short_gap_minutes"`
}

type Config struct {
	Event         Event    `yaml:"event"`
	API           API      `yaml:"api"`
	CacheFile     string   `yaml:"cache_file"`
	Members       []string `yaml:"members"`
	ExcludedTeams []int    `yaml:"excluded_teams"`
	Rules         Rules    `yaml:"rules"`
	Breaks        Breaks   `yaml:"breaks"`
}

// Excluded returns the exclusion block-list as a set.
func (c *Config) Excluded() map[int]bool {
	set := make(map[int]bool, len(c.ExcludedTeams))
	for _, t := range c.ExcludedTeams {
		set[t] = true
	}
	return set
}

// LunchGap returns the lunch-break detection threshold as a duration.
func (c *Config) LunchGap() time.Duration {
	return time.Duration(c.Breaks.LunchGapMinutes) * time.Minute
}

// ShortGap returns the gap-emphasis threshold as a duration.
func (c *Config) ShortGap() time.Duration {
	return time.Duration(c.Breaks.ShortGapMinutes) * time.Minute
}

// LoadFromBytes parses YAML bytes into a Config, applies defaults, and
// validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.CacheFile == "" {
		c.CacheFile = "schedule_cache.json"
	}
	if c.Rules.MinMembersPerTeam == 0 {
		c.Rules.MinMembersPerTeam = 1
	}
	if c.Rules.MinTeamsPerMember == 0 {
		c.Rules.MinTeamsPerMember = 1
	}
	if c.Breaks.LunchGapMinutes == 0 {
		c.Breaks.LunchGapMinutes = 60
	}
	if c.Breaks.ShortGapMinutes == 0 {
		c.Breaks.ShortGapMinutes = 15
	}
}

func (c *Config) validate() error {
	if c.Event.Season <= 0 {
		return fmt.Errorf("event season must be a positive year, got %d", c.Event.Season)
	}
	if c.Event.Code == "" {
		return fmt.Errorf("event code is required")
	}

	level := strings.ToLower(c.Event.TournamentLevel)
	if level != LevelPractice && level != LevelQualification {
		return fmt.Errorf("tournament_level must be %q or %q, got %q",
			LevelPractice, LevelQualification, c.Event.TournamentLevel)
	}
	c.Event.TournamentLevel = level

	// An empty roster is allowed; the assignment engine reports a
	// diagnostic instead of failing.
	seen := make(map[string]bool)
	for _, m := range c.Members {
		if m == "" {
			return fmt.Errorf("members must not contain empty names")
		}
		if seen[m] {
			return fmt.Errorf("member %q is listed twice", m)
		}
		seen[m] = true
	}

	if c.Rules.MinMembersPerTeam < 1 {
		return fmt.Errorf("min_members_per_team must be at least 1")
	}
	if c.Rules.MinTeamsPerMember < 1 {
		return fmt.Errorf("min_teams_per_member must be at least 1")
	}
	if c.Breaks.LunchGapMinutes < 1 {
		return fmt.Errorf("lunch_gap_minutes must be at least 1")
	}
	if c.Breaks.ShortGapMinutes < 0 {
		return fmt.Errorf("short_gap_minutes must not be negative")
	}

	return nil
}

// Credentials holds the FIRST Events API basic-auth pair.
type Credentials struct {
	Username string
	Password string
}

// LoadCredentials reads FRC_API_USERNAME and FRC_API_PASSWORD from the
// environment. A .env file in the working directory is loaded first when
// present so credentials never live in config.yaml.
func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	creds := Credentials{
		Username: os.Getenv("FRC_API_USERNAME"),
		Password: os.Getenv("FRC_API_PASSWORD"),
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("FRC_API_USERNAME and FRC_API_PASSWORD must be set in the environment or a .env file")
	}
	return creds, nil
}

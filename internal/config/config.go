package config

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/iamwavecut/tool"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	envPrefix = "NG_"

	MatchModeSubstring = "substring"
	MatchModeToken     = "token"
)

type (
	Config struct {
		TelegramAPIToken string        `env:"TOKEN,required"`
		DefaultLanguage  string        `env:"LANG,default=ru"`
		LogLevel         int           `env:"LOG_LEVEL,default=4"`
		LogPlain         bool          `env:"LOG_PLAIN,default=false"`
		ChatName         string        `env:"CHAT_NAME"`
		Workers          int           `env:"WORKERS,default=16"`
		RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
		MetricsAddr      string        `env:"METRICS_ADDR"`
		Moderation       Moderation
	}

	Moderation struct {
		AdminIDs             []int64       `env:"ADMIN_IDS"`
		TrustAnonymousAdmins bool          `env:"TRUST_ANONYMOUS_ADMINS,default=false"`
		NewbieWindow         time.Duration `env:"NEWBIE_WINDOW,default=60s"`
		FloodWindow          time.Duration `env:"FLOOD_WINDOW,default=20s"`
		FloodMaxMessages     int           `env:"FLOOD_MAX_MESSAGES,default=3"`
		BadKeywords          []string      `env:"BAD_KEYWORDS"`
		BadDomains           []string      `env:"BAD_DOMAINS"`
		MatchMode            string        `env:"MATCH_MODE,default=substring"`
		MembersCapacity      int           `env:"MEMBERS_CAPACITY,default=100000"`
		SweepSchedule        string        `env:"SWEEP_SCHEDULE,default=@every 1m"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

// Load reads an optional .env file and the NG_ prefixed environment once.
func Load() (Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			globalErr = errors.Wrap(err, "load .env file")
			return
		}
		cfg, err := Parse(context.Background(), envconfig.OsLookuper())
		if err != nil {
			globalErr = err
			return
		}
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

// Parse builds a validated Config from lookuper. Keys are looked up with the
// NG_ prefix.
func Parse(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	envcfg := envconfig.Config{
		Lookuper: envconfig.PrefixLookuper(envPrefix, lookuper),
		Target:   cfg,
	}
	if err := envconfig.ProcessWith(ctx, &envcfg); err != nil {
		return nil, errors.Wrap(err, "process env config")
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Workers <= 0:
		return errors.Errorf("%sWORKERS must be positive, got %d", envPrefix, c.Workers)
	case c.RequestTimeout <= 0:
		return errors.Errorf("%sREQUEST_TIMEOUT must be positive, got %s", envPrefix, c.RequestTimeout)
	case c.Moderation.NewbieWindow <= 0:
		return errors.Errorf("%sNEWBIE_WINDOW must be positive, got %s", envPrefix, c.Moderation.NewbieWindow)
	case c.Moderation.FloodWindow <= 0:
		return errors.Errorf("%sFLOOD_WINDOW must be positive, got %s", envPrefix, c.Moderation.FloodWindow)
	case c.Moderation.FloodMaxMessages <= 0:
		return errors.Errorf("%sFLOOD_MAX_MESSAGES must be positive, got %d", envPrefix, c.Moderation.FloodMaxMessages)
	case c.Moderation.MembersCapacity <= 0:
		return errors.Errorf("%sMEMBERS_CAPACITY must be positive, got %d", envPrefix, c.Moderation.MembersCapacity)
	case !tool.In(c.Moderation.MatchMode, MatchModeSubstring, MatchModeToken):
		return errors.Errorf("%sMATCH_MODE must be %q or %q, got %q", envPrefix, MatchModeSubstring, MatchModeToken, c.Moderation.MatchMode)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	envPrefix = "ZONESYNC_"

	defaultListenAddr       = ":8080"
	defaultDiscoveryService = "_slimcli._tcp"
	defaultStoreBackend     = "file"
	defaultValkeyPrefix     = "zonesync:"
	defaultDACControlPath   = "/RenderingControl/ctrl"
	defaultArtworkDir       = "/tmp/zonesync/artwork"
)

// Flags carries command line overrides parsed in cmd/daemon
type Flags struct {
	EnvFile string
	Listen  string
	LMSURL  string
	Debug   bool
}

// GatewayConfig configures the media server JSON-RPC client
type GatewayConfig struct {
	URL              string
	Username         string
	Password         string
	Timeout          time.Duration
	PlayerLimit      int
	DiscoveryService string
	DiscoveryTimeout time.Duration
}

// SyncConfig configures the playback state synchronizer
type SyncConfig struct {
	BaseInterval     time.Duration
	InitialDelay     time.Duration
	RequestTimeout   time.Duration
	BackoffAfter     int
	MaxInterval      time.Duration
	FailureWindow    time.Duration
	FailureLimit     int
	PostCommandDelay time.Duration
	LoadCooldown     time.Duration
	RefreshInterval  time.Duration
	HistorySize      int
}

// VolumeConfig configures the volume arbiter
type VolumeConfig struct {
	Debounce      time.Duration
	EchoWindow    time.Duration
	EchoTolerance int
	Timeout       time.Duration
	// Priority lists backend names, highest first; the remote player is always the last resort
	Priority []string
}

// DACConfig configures the hardware DAC RenderingControl endpoint
type DACConfig struct {
	Address     string
	ControlPath string
	Timeout     time.Duration
}

// AudioCoreConfig configures the external audio-core volume bridge
type AudioCoreConfig struct {
	BaseURL    string
	ZoneHandle string
	Enabled    bool
	// AssumeConnectedOnProbeFailure treats an unreachable status endpoint as connected
	AssumeConnectedOnProbeFailure bool
	Timeout                       time.Duration
}

// StoreConfig selects and configures the persistent store
type StoreConfig struct {
	Backend        string // file, valkey or memory
	FilePath       string
	ValkeyAddr     string
	ValkeyPassword string
	ValkeyPrefix   string
}

// Capabilities describes what the connected server supports
type Capabilities struct {
	PlaylistIndex bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Debug        bool
	ListenAddr   string
	MPRISEnabled bool
	MPRISName    string
	ArtworkDir   string
	ArtworkSize  int
	Gateway      GatewayConfig
	Sync         SyncConfig
	Volume       VolumeConfig
	DAC          DACConfig
	AudioCore    AudioCoreConfig
	Store        StoreConfig
	Capabilities Capabilities
}

// Default returns the configuration used when nothing is set
func Default() *AppConfig {
	return &AppConfig{
		ListenAddr:   defaultListenAddr,
		MPRISEnabled: true,
		MPRISName:    "zonesync",
		ArtworkDir:   defaultArtworkDir,
		ArtworkSize:  512,
		Gateway: GatewayConfig{
			Timeout:          5 * time.Second,
			PlayerLimit:      100,
			DiscoveryService: defaultDiscoveryService,
			DiscoveryTimeout: 3 * time.Second,
		},
		Sync: SyncConfig{
			BaseInterval:     2 * time.Second,
			InitialDelay:     250 * time.Millisecond,
			RequestTimeout:   4 * time.Second,
			BackoffAfter:     3,
			MaxInterval:      30 * time.Second,
			FailureWindow:    60 * time.Second,
			FailureLimit:     10,
			PostCommandDelay: 300 * time.Millisecond,
			LoadCooldown:     2 * time.Second,
			RefreshInterval:  30 * time.Second,
			HistorySize:      100,
		},
		Volume: VolumeConfig{
			Debounce:      40 * time.Millisecond,
			EchoWindow:    3 * time.Second,
			EchoTolerance: 2,
			Timeout:       1500 * time.Millisecond,
			Priority:      []string{"audiocore", "dac"},
		},
		DAC: DACConfig{
			ControlPath: defaultDACControlPath,
			Timeout:     1500 * time.Millisecond,
		},
		AudioCore: AudioCoreConfig{
			Enabled:                       true,
			AssumeConnectedOnProbeFailure: true,
			Timeout:                       1500 * time.Millisecond,
		},
		Store: StoreConfig{
			Backend:      defaultStoreBackend,
			ValkeyPrefix: defaultValkeyPrefix,
		},
		Capabilities: Capabilities{PlaylistIndex: true},
	}
}

// NewAppConfig creates the application configuration from the environment and flag overrides
func NewAppConfig(logger *zap.Logger, flags Flags) *AppConfig {
	// Load .env before reading the environment; a missing file is normal
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug("No env file loaded, using environment variables and defaults",
			zap.String("file", envFile))
	}

	cfg := Default()
	cfg.Debug = flags.Debug || envBool("DEBUG", false)
	cfg.ListenAddr = envString("LISTEN", cfg.ListenAddr)
	cfg.MPRISEnabled = envBool("MPRIS_ENABLED", cfg.MPRISEnabled)
	cfg.MPRISName = envString("MPRIS_NAME", cfg.MPRISName)
	cfg.ArtworkDir = expandPath(envString("ARTWORK_DIR", cfg.ArtworkDir))
	cfg.ArtworkSize = envInt("ARTWORK_SIZE", cfg.ArtworkSize)

	g := &cfg.Gateway
	g.URL = strings.TrimRight(envString("LMS_URL", g.URL), "/")
	g.Username = envString("LMS_USER", g.Username)
	g.Password = envString("LMS_PASSWORD", g.Password)
	g.Timeout = envDuration("LMS_TIMEOUT", g.Timeout)
	g.PlayerLimit = envInt("LMS_PLAYER_LIMIT", g.PlayerLimit)
	g.DiscoveryService = envString("DISCOVERY_SERVICE", g.DiscoveryService)
	g.DiscoveryTimeout = envDuration("DISCOVERY_TIMEOUT", g.DiscoveryTimeout)

	s := &cfg.Sync
	s.BaseInterval = envDuration("POLL_INTERVAL", s.BaseInterval)
	s.InitialDelay = envDuration("POLL_INITIAL_DELAY", s.InitialDelay)
	s.RequestTimeout = envDuration("POLL_TIMEOUT", s.RequestTimeout)
	s.BackoffAfter = envInt("POLL_BACKOFF_AFTER", s.BackoffAfter)
	s.MaxInterval = envDuration("POLL_MAX_INTERVAL", s.MaxInterval)
	s.FailureWindow = envDuration("POLL_FAILURE_WINDOW", s.FailureWindow)
	s.FailureLimit = envInt("POLL_FAILURE_LIMIT", s.FailureLimit)
	s.PostCommandDelay = envDuration("POST_COMMAND_DELAY", s.PostCommandDelay)
	s.LoadCooldown = envDuration("LOAD_COOLDOWN", s.LoadCooldown)
	s.RefreshInterval = envDuration("REFRESH_INTERVAL", s.RefreshInterval)
	s.HistorySize = envInt("HISTORY_SIZE", s.HistorySize)

	v := &cfg.Volume
	v.Debounce = envDuration("VOLUME_DEBOUNCE", v.Debounce)
	v.EchoWindow = envDuration("VOLUME_ECHO_WINDOW", v.EchoWindow)
	v.EchoTolerance = envInt("VOLUME_ECHO_TOLERANCE", v.EchoTolerance)
	v.Timeout = envDuration("VOLUME_TIMEOUT", v.Timeout)
	v.Priority = envList("VOLUME_PRIORITY", v.Priority)

	cfg.DAC.Address = envString("DAC_ADDRESS", cfg.DAC.Address)
	cfg.DAC.ControlPath = envString("DAC_CONTROL_PATH", cfg.DAC.ControlPath)
	cfg.DAC.Timeout = envDuration("DAC_TIMEOUT", cfg.DAC.Timeout)

	a := &cfg.AudioCore
	a.BaseURL = strings.TrimRight(envString("AUDIOCORE_URL", a.BaseURL), "/")
	a.ZoneHandle = envString("AUDIOCORE_ZONE", a.ZoneHandle)
	a.Enabled = envBool("AUDIOCORE_ENABLED", a.Enabled)
	a.AssumeConnectedOnProbeFailure = envBool("AUDIOCORE_ASSUME_CONNECTED", a.AssumeConnectedOnProbeFailure)
	a.Timeout = envDuration("AUDIOCORE_TIMEOUT", a.Timeout)

	st := &cfg.Store
	st.Backend = strings.ToLower(envString("STORE", st.Backend))
	st.FilePath = expandPath(envString("STORE_PATH", st.FilePath))
	st.ValkeyAddr = envString("VALKEY_ADDR", st.ValkeyAddr)
	st.ValkeyPassword = envString("VALKEY_PASSWORD", st.ValkeyPassword)
	st.ValkeyPrefix = envString("VALKEY_PREFIX", st.ValkeyPrefix)

	cfg.Capabilities.PlaylistIndex = envBool("CAP_PLAYLIST_INDEX", cfg.Capabilities.PlaylistIndex)

	// Flags win over the environment
	if flags.Listen != "" {
		cfg.ListenAddr = flags.Listen
	}
	if flags.LMSURL != "" {
		cfg.Gateway.URL = strings.TrimRight(flags.LMSURL, "/")
	}

	logger.Info("Configuration loaded",
		zap.String("lms", cfg.Gateway.URL),
		zap.String("listen", cfg.ListenAddr),
		zap.String("store", cfg.Store.Backend),
		zap.Strings("volumePriority", cfg.Volume.Priority),
		zap.Bool("dac", cfg.DAC.Address != ""),
		zap.Bool("audioCore", cfg.AudioCore.BaseURL != ""),
		zap.Bool("mpris", cfg.MPRISEnabled),
		zap.Duration("pollInterval", cfg.Sync.BaseInterval))

	return cfg
}

func envString(name, def string) string {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envBool(name string, def bool) bool {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// envDuration accepts Go durations ("1.5s") or plain milliseconds ("1500")
func envDuration(name string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func envList(name string, def []string) []string {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

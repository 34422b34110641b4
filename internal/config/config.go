// Package config loads beaconscope settings from a JSON or YAML file. Every
// field is optional; the Get* accessors supply defaults for anything the file
// leaves out, so partial configs are safe.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/beacon.scope/internal/fsutil"
)

// ErrNoEndpoint is returned by URL when neither an explicit url nor a
// host/port pair is configured.
var ErrNoEndpoint = errors.New("no endpoint configured: set url or host and port")

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root configuration. JSON and YAML share the same keys.
type Config struct {
	// Connection
	URL    *string `json:"url,omitempty" yaml:"url,omitempty"`
	Host   *string `json:"host,omitempty" yaml:"host,omitempty"`
	Port   *int    `json:"port,omitempty" yaml:"port,omitempty"`
	Secure *bool   `json:"secure,omitempty" yaml:"secure,omitempty"`
	Path   *string `json:"path,omitempty" yaml:"path,omitempty"`

	DialTimeout      *string `json:"dial_timeout,omitempty" yaml:"dial_timeout,omitempty"` // duration string like "5s"
	SubscriberBuffer *int    `json:"subscriber_buffer,omitempty" yaml:"subscriber_buffer,omitempty"`

	// Decoding
	LegacyNegativeInfinity *bool `json:"legacy_negative_infinity,omitempty" yaml:"legacy_negative_infinity,omitempty"`

	// Viewport
	Window        *string  `json:"window,omitempty" yaml:"window,omitempty"` // duration string like "10s"
	PanStep       *float64 `json:"pan_step,omitempty" yaml:"pan_step,omitempty"`
	FinePanStep   *float64 `json:"fine_pan_step,omitempty" yaml:"fine_pan_step,omitempty"`
	ZoomFactor    *float64 `json:"zoom_factor,omitempty" yaml:"zoom_factor,omitempty"`
	// Value window and clamp are in device units (mm).
	ValueMin      *float64 `json:"value_min,omitempty" yaml:"value_min,omitempty"`
	ValueMax      *float64 `json:"value_max,omitempty" yaml:"value_max,omitempty"`
	InfinityClamp *float64 `json:"infinity_clamp,omitempty" yaml:"infinity_clamp,omitempty"`

	// Rendering
	HitRadiusPx   *float64 `json:"hit_radius_px,omitempty" yaml:"hit_radius_px,omitempty"`
	FrameInterval *string  `json:"frame_interval,omitempty" yaml:"frame_interval,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Defaults returns a Config with every field populated with its default.
func Defaults() *Config {
	return &Config{
		Port:                   ptrInt(80),
		Secure:                 ptrBool(false),
		Path:                   ptrString("/klippysocket"),
		DialTimeout:            ptrString("5s"),
		SubscriberBuffer:       ptrInt(64),
		LegacyNegativeInfinity: ptrBool(false),
		Window:                 ptrString("10s"),
		PanStep:                ptrFloat64(5),
		FinePanStep:            ptrFloat64(1),
		ZoomFactor:             ptrFloat64(1.1),
		ValueMin:               ptrFloat64(0),
		ValueMax:               ptrFloat64(5.5),
		InfinityClamp:          ptrFloat64(1e6),
		HitRadiusPx:            ptrFloat64(5),
		FrameInterval:          ptrString("16ms"),
	}
}

// Load reads a Config from path. The extension selects the format: .json or
// .yaml/.yml. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	return LoadFS(fsutil.OSFileSystem{}, path)
}

func formatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return "", fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}
	return ext, nil
}

// LoadFS is Load against fsys.
func LoadFS(fsys fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext, err := formatOf(cleanPath)
	if err != nil {
		return nil, err
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes c to path in the format its extension names. An existing
// file is left alone.
func (c *Config) Save(fsys fsutil.FileSystem, path string) error {
	cleanPath := filepath.Clean(path)
	ext, err := formatOf(cleanPath)
	if err != nil {
		return err
	}
	if fsys.Exists(cleanPath) {
		return fmt.Errorf("config file %s already exists", cleanPath)
	}

	var data []byte
	if ext == ".json" {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return fsys.WriteFile(cleanPath, data, 0o644)
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if c.Port != nil && (*c.Port < 1 || *c.Port > 65535) {
		return fmt.Errorf("port must be between 1 and 65535, got %d", *c.Port)
	}
	if c.URL != nil && *c.URL != "" {
		u, err := url.Parse(*c.URL)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", *c.URL, err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("url scheme must be ws or wss, got %q", u.Scheme)
		}
	}
	for name, v := range map[string]*string{
		"dial_timeout":   c.DialTimeout,
		"window":         c.Window,
		"frame_interval": c.FrameInterval,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, *v)
		}
	}
	if c.SubscriberBuffer != nil && *c.SubscriberBuffer < 0 {
		return fmt.Errorf("subscriber_buffer must be non-negative, got %d", *c.SubscriberBuffer)
	}
	if c.PanStep != nil && *c.PanStep <= 0 {
		return fmt.Errorf("pan_step must be positive, got %f", *c.PanStep)
	}
	if c.FinePanStep != nil && *c.FinePanStep <= 0 {
		return fmt.Errorf("fine_pan_step must be positive, got %f", *c.FinePanStep)
	}
	if c.ZoomFactor != nil && (*c.ZoomFactor <= 1 || math.IsInf(*c.ZoomFactor, 0)) {
		return fmt.Errorf("zoom_factor must be greater than 1, got %f", *c.ZoomFactor)
	}
	if c.HitRadiusPx != nil && *c.HitRadiusPx <= 0 {
		return fmt.Errorf("hit_radius_px must be positive, got %f", *c.HitRadiusPx)
	}
	if c.InfinityClamp != nil && (*c.InfinityClamp <= 0 || math.IsInf(*c.InfinityClamp, 0)) {
		return fmt.Errorf("infinity_clamp must be positive and finite, got %f", *c.InfinityClamp)
	}
	if c.GetValueMin() >= c.GetValueMax() {
		return fmt.Errorf("value_min (%f) must be below value_max (%f)", c.GetValueMin(), c.GetValueMax())
	}
	return nil
}

// Merge copies every field set in other over c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.URL != nil {
		c.URL = other.URL
	}
	if other.Host != nil {
		c.Host = other.Host
	}
	if other.Port != nil {
		c.Port = other.Port
	}
	if other.Secure != nil {
		c.Secure = other.Secure
	}
	if other.Path != nil {
		c.Path = other.Path
	}
	if other.DialTimeout != nil {
		c.DialTimeout = other.DialTimeout
	}
	if other.SubscriberBuffer != nil {
		c.SubscriberBuffer = other.SubscriberBuffer
	}
	if other.LegacyNegativeInfinity != nil {
		c.LegacyNegativeInfinity = other.LegacyNegativeInfinity
	}
	if other.Window != nil {
		c.Window = other.Window
	}
	if other.PanStep != nil {
		c.PanStep = other.PanStep
	}
	if other.FinePanStep != nil {
		c.FinePanStep = other.FinePanStep
	}
	if other.ZoomFactor != nil {
		c.ZoomFactor = other.ZoomFactor
	}
	if other.ValueMin != nil {
		c.ValueMin = other.ValueMin
	}
	if other.ValueMax != nil {
		c.ValueMax = other.ValueMax
	}
	if other.InfinityClamp != nil {
		c.InfinityClamp = other.InfinityClamp
	}
	if other.HitRadiusPx != nil {
		c.HitRadiusPx = other.HitRadiusPx
	}
	if other.FrameInterval != nil {
		c.FrameInterval = other.FrameInterval
	}
}

// GetURL builds the WebSocket endpoint. An explicit url wins; otherwise the
// endpoint is ws[s]://host:port/path.
func (c *Config) GetURL() (string, error) {
	if c.URL != nil && *c.URL != "" {
		return *c.URL, nil
	}
	if c.Host == nil || strings.TrimSpace(*c.Host) == "" || c.GetPort() == 0 {
		return "", ErrNoEndpoint
	}
	scheme := "ws"
	if c.GetSecure() {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   strings.TrimSpace(*c.Host) + ":" + strconv.Itoa(c.GetPort()),
		Path:   c.GetPath(),
	}
	return u.String(), nil
}

// GetPort returns the port value or the default.
func (c *Config) GetPort() int {
	if c.Port == nil {
		return 80
	}
	return *c.Port
}

// GetSecure returns the secure value or the default.
func (c *Config) GetSecure() bool {
	if c.Secure == nil {
		return false
	}
	return *c.Secure
}

// GetPath returns the socket path or the default.
func (c *Config) GetPath() string {
	if c.Path == nil || *c.Path == "" {
		return "/klippysocket"
	}
	if !strings.HasPrefix(*c.Path, "/") {
		return "/" + *c.Path
	}
	return *c.Path
}

// GetDialTimeout parses and returns the DialTimeout as a time.Duration.
func (c *Config) GetDialTimeout() time.Duration {
	return parseDurationOr(c.DialTimeout, 5*time.Second)
}

// GetSubscriberBuffer returns the subscriber_buffer value or the default.
func (c *Config) GetSubscriberBuffer() int {
	if c.SubscriberBuffer == nil {
		return 64
	}
	return *c.SubscriberBuffer
}

// GetLegacyNegativeInfinity returns the legacy_negative_infinity value or the default.
func (c *Config) GetLegacyNegativeInfinity() bool {
	if c.LegacyNegativeInfinity == nil {
		return false
	}
	return *c.LegacyNegativeInfinity
}

// GetWindow parses and returns the trailing live window.
func (c *Config) GetWindow() time.Duration {
	return parseDurationOr(c.Window, 10*time.Second)
}

// GetPanStep returns the pan_step value or the default.
func (c *Config) GetPanStep() float64 {
	if c.PanStep == nil {
		return 5
	}
	return *c.PanStep
}

// GetFinePanStep returns the fine_pan_step value or the default.
func (c *Config) GetFinePanStep() float64 {
	if c.FinePanStep == nil {
		return 1
	}
	return *c.FinePanStep
}

// GetZoomFactor returns the zoom_factor value or the default.
func (c *Config) GetZoomFactor() float64 {
	if c.ZoomFactor == nil {
		return 1.1
	}
	return *c.ZoomFactor
}

// GetValueMin returns the value_min value or the default.
func (c *Config) GetValueMin() float64 {
	if c.ValueMin == nil {
		return 0
	}
	return *c.ValueMin
}

// GetValueMax returns the value_max value or the default.
func (c *Config) GetValueMax() float64 {
	if c.ValueMax == nil {
		return 5.5
	}
	return *c.ValueMax
}

// GetInfinityClamp returns the infinity_clamp value or the default.
func (c *Config) GetInfinityClamp() float64 {
	if c.InfinityClamp == nil {
		return 1e6
	}
	return *c.InfinityClamp
}

// GetHitRadiusPx returns the hit_radius_px value or the default.
func (c *Config) GetHitRadiusPx() float64 {
	if c.HitRadiusPx == nil {
		return 5
	}
	return *c.HitRadiusPx
}

// GetFrameInterval parses and returns the frame interval.
func (c *Config) GetFrameInterval() time.Duration {
	return parseDurationOr(c.FrameInterval, 16*time.Millisecond)
}

func parseDurationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil || d <= 0 {
		return def // default on parse error
	}
	return d
}

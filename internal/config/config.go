// Package config provides centralized configuration for jdp.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"

	"jdp/internal/render"
	"jdp/internal/schema"
)

// FileName is the configuration file looked up by Load.
const FileName = "config.toml"

// MaxWorkers is the cap for parallel workers
const MaxWorkers = 8

// Config represents the structure of config.toml. Every scalar key can be
// overridden with its JDP_* environment variable.
type Config struct {
	SrcDir      string `toml:"src_dir"     env:"JDP_SRC_DIR"`
	TmpDir      string `toml:"tmp_dir"     env:"JDP_TMP_DIR"`
	OutDir      string `toml:"out_dir"     env:"JDP_OUT_DIR"`
	SchemaDir   string `toml:"schema_dir"  env:"JDP_SCHEMA_DIR"`
	LockFile    string `toml:"lock_file"   env:"JDP_LOCK_FILE"`
	Language    string `toml:"language"    env:"JDP_LANGUAGE"`
	Format      string `toml:"format"      env:"JDP_FORMAT"`
	Tag         string `toml:"tag"         env:"JDP_TAG"`
	Translation string `toml:"translation" env:"JDP_TRANSLATION"`
	Workers     int    `toml:"workers"     env:"JDP_WORKERS"`
	Quiet       bool   `toml:"quiet"       env:"JDP_QUIET"`
	Verbose     bool   `toml:"verbose"     env:"JDP_VERBOSE"`
	Metrics     bool   `toml:"metrics"     env:"JDP_METRICS"`
	Export      Export `toml:"export"`

	// Path is the file the configuration was read from, empty for fallback.
	Path string `toml:"-"`
}

// Export holds the renderer settings.
type Export struct {
	Outputs       []string       `toml:"outputs"        env:"JDP_OUTPUTS" env-separator:","`
	ListSeparator string         `toml:"list_separator" env:"JDP_LIST_SEPARATOR"`
	TagSeparator  string         `toml:"tag_separator"  env:"JDP_TAG_SEPARATOR"`
	Media         MediaTemplates `toml:"media"`
}

// MediaTemplates wrap exported media names in a cell; "{name}" is replaced.
type MediaTemplates struct {
	Image string `toml:"image"`
	Audio string `toml:"audio"`
	Video string `toml:"video"`
}

// Default returns the hardcoded fallback configuration (used if config.toml
// is not found).
func Default() *Config {
	opts := render.DefaultOptions()
	return &Config{
		SrcDir:      "src",
		TmpDir:      "tmp",
		OutDir:      "out",
		SchemaDir:   filepath.Join("tool", "schema"),
		LockFile:    ".jdp.lock",
		Language:    "*",
		Format:      "*",
		Tag:         "*",
		Translation: "en",
		Workers:     0,
		Metrics:     true,
		Export: Export{
			Outputs:       []string{"txt"},
			ListSeparator: opts.ListSeparator,
			TagSeparator:  opts.TagSeparator,
			Media: MediaTemplates{
				Image: opts.Media[schema.MediaImage],
				Audio: opts.Media[schema.MediaAudio],
				Video: opts.Media[schema.MediaVideo],
			},
		},
	}
}

// searchPaths lists the candidate config files, walking up from the working
// directory and from the executable location.
func searchPaths() []string {
	paths := []string{
		FileName,
		filepath.Join("..", FileName),
		filepath.Join("..", "..", FileName),
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(dir, FileName),
			filepath.Join(dir, "..", FileName),
			filepath.Join(dir, "..", "..", FileName),
		)
	}
	return paths
}

// Load reads the configuration. With an explicit path the file must exist;
// otherwise config.toml is searched and the fallback is used when absent.
// Environment variables are applied last.
// Priority: ENV > TOML > defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		cfg.Path = path
	} else {
		for _, candidate := range searchPaths() {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if _, err := toml.DecodeFile(candidate, cfg); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", candidate, err)
			}
			cfg.Path = candidate
			break
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by decoding.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	if c.Translation == "" {
		return fmt.Errorf("config: translation must not be empty")
	}
	for _, name := range c.Export.Outputs {
		if _, err := render.New(name, c.RenderOptions()); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// RenderOptions converts the [export] table into renderer options.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		ListSeparator: c.Export.ListSeparator,
		TagSeparator:  c.Export.TagSeparator,
		Media: map[schema.MediaKind]string{
			schema.MediaImage: c.Export.Media.Image,
			schema.MediaAudio: c.Export.Media.Audio,
			schema.MediaVideo: c.Export.Media.Video,
		},
	}
}

// Renderers instantiates every configured output.
func (c *Config) Renderers() ([]render.Renderer, error) {
	opts := c.RenderOptions()
	renderers := make([]render.Renderer, 0, len(c.Export.Outputs))
	for _, name := range c.Export.Outputs {
		r, err := render.New(name, opts)
		if err != nil {
			return nil, err
		}
		renderers = append(renderers, r)
	}
	return renderers, nil
}

// EffectiveWorkers resolves workers=0 to the number of CPUs, capped at
// MaxWorkers and at the number of jobs.
func (c *Config) EffectiveWorkers(jobs int) int {
	n := c.Workers
	if n == 0 {
		n = min(runtime.NumCPU(), MaxWorkers)
	}
	if jobs > 0 && n > jobs {
		n = jobs
	}
	return max(n, 1)
}

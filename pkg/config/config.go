// Package config loads rigup settings: embedded TOML defaults, then an
// optional user file (TOML or YAML) in the XDG config directory, then
// RIGUP_-prefixed environment variables, each layer overriding the
// previous one.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/rigup/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix namespaces the environment overrides,
// e.g. RIGUP_PKGMGR_BINARY=apt sets pkgmgr.binary.
const EnvPrefix = "RIGUP_"

// PkgMgr describes how to drive the package manager CLI.
type PkgMgr struct {
	Binary      string   `koanf:"binary" toml:"binary"`
	InstallArgs []string `koanf:"install_args" toml:"install_args"`
	ConfirmArgs []string `koanf:"confirm_args" toml:"confirm_args"`
	RefreshArgs []string `koanf:"refresh_args" toml:"refresh_args"`
	Noise       []string `koanf:"noise" toml:"noise"`
}

// Retry bounds the installer's retry loop.
type Retry struct {
	MaxAttempts  int `koanf:"max_attempts" toml:"max_attempts"`
	PauseSeconds int `koanf:"pause_seconds" toml:"pause_seconds"`
}

// MirrorTier is one configured tier of package-source endpoints.
type MirrorTier struct {
	Name      string   `koanf:"name" toml:"name"`
	Endpoints []string `koanf:"endpoints" toml:"endpoints"`
}

// Mirror holds the tier list and the endpoint file they are written to.
type Mirror struct {
	File  string       `koanf:"file" toml:"file"`
	Tiers []MirrorTier `koanf:"tiers" toml:"tiers"`
}

// Packages lists what each installation step installs.
type Packages struct {
	Core      []string `koanf:"core" toml:"core"`
	Extra     []string `koanf:"extra" toml:"extra"`
	Assistant []string `koanf:"assistant" toml:"assistant"`
}

// Dotfiles configures dotfiles-location detection.
type Dotfiles struct {
	DirName     string   `koanf:"dir_name" toml:"dir_name"`
	SharedRoots []string `koanf:"shared_roots" toml:"shared_roots"`
}

// Shell lists the startup files rigup appends to, relative to home.
type Shell struct {
	Profiles []string `koanf:"profiles" toml:"profiles"`
}

// Workspace names the conventional home-area directories.
type Workspace struct {
	Bin    string `koanf:"bin" toml:"bin"`
	Config string `koanf:"config" toml:"config"`
	Docs   string `koanf:"docs" toml:"docs"`
	Root   string `koanf:"root" toml:"root"`
}

// Config is the full decoded configuration.
type Config struct {
	PkgMgr    PkgMgr    `koanf:"pkgmgr" toml:"pkgmgr"`
	Retry     Retry     `koanf:"retry" toml:"retry"`
	Mirror    Mirror    `koanf:"mirror" toml:"mirror"`
	Packages  Packages  `koanf:"packages" toml:"packages"`
	Dotfiles  Dotfiles  `koanf:"dotfiles" toml:"dotfiles"`
	Shell     Shell     `koanf:"shell" toml:"shell"`
	Workspace Workspace `koanf:"workspace" toml:"workspace"`
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Load builds the effective configuration. userConfigDir is where the
// optional user file lives (paths.Paths.UserConfigDir); empty skips
// the user-file layer.
func Load(userConfigDir string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. User file, TOML preferred, YAML accepted
	if userConfigDir != "" {
		for _, name := range []string{"rigup.toml", "rigup.yaml", "rigup.yml"} {
			path := filepath.Join(userConfigDir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			var parser koanf.Parser = toml.Parser()
			if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
				parser = yaml.Parser()
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse user config %s", path)
			}
			break
		}
	}

	// 3. Environment overrides: RIGUP_PKGMGR_BINARY -> pkgmgr.binary.
	// Only the first underscore becomes a separator so keys like
	// retry.max_attempts stay addressable.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	return &cfg, nil
}

// DefaultConfigContent returns the embedded defaults file verbatim.
func DefaultConfigContent() []byte {
	return defaultConfig
}

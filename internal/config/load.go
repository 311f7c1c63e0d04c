package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FindConfigFile walks up from startDir to locate .quill.toml.
func FindConfigFile(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes a .quill.toml on top of Default. Keys absent from the file
// keep their defaults; relative directories are resolved against the file's
// directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	base := filepath.Dir(path)
	if meta.IsDefined("root_directory") {
		cfg.RootDirectory = resolveDir(base, cfg.RootDirectory)
	}
	if meta.IsDefined("distro", "cache_dir") {
		cfg.Distro.CacheDir = resolveDir(base, cfg.Distro.CacheDir)
	}
	if meta.IsDefined("chktex", "executable") && strings.TrimSpace(cfg.Chktex.Executable) == "" {
		return nil, fmt.Errorf("%s: [chktex].executable must not be empty", path)
	}
	for _, key := range meta.Undecoded() {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
	}
	if err := cfg.Finalize(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadForRoot finds and loads the config for a workspace root. A missing
// file yields Default with RootDirectory left empty.
func LoadForRoot(root string) (*Config, string, error) {
	path, ok, err := FindConfigFile(root)
	if err != nil {
		return Default(), "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if cfg == nil {
		return Default(), path, err
	}
	return cfg, path, err
}

func resolveDir(base, dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, filepath.FromSlash(dir))
}

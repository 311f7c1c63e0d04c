package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrExists is returned by WriteTemplate when the target already has a config file.
var ErrExists = errors.New("config file already exists")

const template = `# quill workspace configuration

# Directory used to resolve \include and \input paths.
# root_directory = "."

[diagnostics]
# A message must match one of these (when non-empty) to be shown.
allowed_patterns = []
# Messages matching any of these are hidden.
ignored_patterns = []
delay_ms = 300

[chktex]
on_open_and_save = true
on_edit = false
additional_args = []
# executable = "chktex"

[build]
aux_directory = "."
log_directory = "."

[syntax]
verbatim_environments = []
label_definition_commands = []
label_reference_commands = []
citation_commands = []

[distro]
# roots = ["/usr/share/texlive/texmf-dist"]
# kpsewhich = "kpsewhich"
disabled = false
`

// Template returns the commented default config file.
func Template() string {
	return template
}

// WriteTemplate creates dir/.quill.toml and returns its path.
func WriteTemplate(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s: %w", path, ErrExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return path, err
	}
	// #nosec G306 -- config is meant to be readable
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

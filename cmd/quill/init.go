package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quill/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a commented " + config.FileName + " into a project",
	Long: `Init writes a ` + config.FileName + ` with every setting at its default
value and commented out. If [dir] is omitted the current directory is used;
a missing directory is created. Existing configuration is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(abs); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", abs, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", abs)
	}

	path, err := config.WriteTemplate(abs)
	if err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("already initialized: %w", err)
		}
		return err
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		rel := path
		if wd, err := os.Getwd(); err == nil {
			if r, err := filepath.Rel(wd, path); err == nil {
				rel = r
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", rel)
	}
	return nil
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shepherdwind/goresolver/internal/fsprobe"
)

var probeCmd = &cobra.Command{
	Use:   "probe <path>",
	Short: "Report whether a path is missing, a file, or a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", args[0], err)
	}
	kind, err := (fsprobe.OSFS{}).Stat(filepath.ToSlash(abs))
	if err != nil {
		return err
	}
	fmt.Println(kind)
	return nil
}

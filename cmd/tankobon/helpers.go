package main

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"tankobon/internal/services/kcc"
)

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newConversionProgress returns a progress callback for converter output. On
// a terminal it drives a spinner whose description follows the converter's
// last line; otherwise it is nil and conversion runs quietly (the structured
// log still records everything).
func newConversionProgress() (func(kcc.ProgressUpdate), func()) {
	if !stderrIsTerminal() {
		return nil, func() {}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	progress := func(update kcc.ProgressUpdate) {
		if update.Message != "" {
			bar.Describe(update.Message)
		}
		_ = bar.Add(1)
	}
	return progress, func() { _ = bar.Finish() }
}

func absolutePaths(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tankobon/internal/delivery"
	"tankobon/internal/frontmatter"
	"tankobon/internal/notifications"
	"tankobon/internal/packing"
	"tankobon/internal/services/kcc"
	"tankobon/internal/session"
)

func newPackCommand(ctx *commandContext) *cobra.Command {
	var (
		title        string
		ceilingMB    int
		coverPath    string
		removePages  []string
		email        bool
		copyTo       string
		deleteInputs bool
	)

	cmd := &cobra.Command{
		Use:   "pack --title <work> <chapter archives...>",
		Short: "Pack chapter archives into sized volumes",
		Long: `Pack sorts the given chapter archives by the chapter number parsed from
each file name, merges as many consecutive chapters as fit under the size
ceiling per volume, and writes the finished volumes into the output
directory named "<title> [<range>].epub".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			paths, err := absolutePaths(args)
			if err != nil {
				return err
			}

			store := session.NewStore(cfg.Paths.StagingDir, logger)
			owner := int64(os.Getuid())
			if err := store.Begin(owner); err != nil {
				if errors.Is(err, session.ErrRunActive) {
					return fmt.Errorf("another packing run is already active for this user")
				}
				return err
			}
			defer store.End(owner)

			var curator *frontmatter.Curator
			if coverPath != "" || len(removePages) > 0 {
				curator = frontmatter.New(filepath.Join(cfg.Paths.StagingDir, "frontmatter"), logger)
				if coverPath != "" {
					abs, err := filepath.Abs(coverPath)
					if err != nil {
						return err
					}
					if _, err := os.Stat(abs); err != nil {
						return fmt.Errorf("cover image: %w", err)
					}
					curator.SetCover(abs)
				}
				curator.RemovePages(removePages...)
			}

			client := kcc.NewCLI(
				kcc.WithBinary(cfg.KCC.Binary),
				kcc.WithProfile(cfg.KCC.Profile),
				kcc.WithGamma(cfg.KCC.Gamma),
			)
			engine := packing.New(cfg, client, logger)
			notifier := notifications.NewService(cfg)

			progress, finishProgress := newConversionProgress()
			_ = notifier.NotifyPackingStarted(cmd.Context(), title, len(paths))

			start := time.Now()
			result, err := engine.Run(cmd.Context(), packing.Request{
				Title:         title,
				ChapterPaths:  paths,
				CeilingBytes:  int64(ceilingMB) * 1024 * 1024,
				Curator:       curator,
				CleanupInputs: deleteInputs,
				Progress:      progress,
			})
			finishProgress()
			if err != nil {
				_ = notifier.NotifyError(cmd.Context(), err, "packing")
				return err
			}
			_ = notifier.NotifyPackingCompleted(cmd.Context(), title, len(result.Volumes), len(result.Skipped), time.Since(start))

			out := cmd.OutOrStdout()
			if len(result.Volumes) == 0 {
				fmt.Fprintf(out, "Nothing to merge: no chapter numbers found in %d file(s)\n", len(result.Skipped))
				return nil
			}

			rows := make([][]string, 0, len(result.Volumes))
			for _, v := range result.Volumes {
				rows = append(rows, []string{v.Label, filepath.Base(v.Path), humanize.Bytes(uint64(v.Size))})
				_ = notifier.NotifyVolumeFinished(cmd.Context(), title, v.Label)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Chapters", "Volume", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			if len(result.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped %d file(s) with no parseable chapter number\n", len(result.Skipped))
			}

			for _, sender := range buildSenders(cmd, ctx, email, copyTo) {
				for _, v := range result.Volumes {
					if err := sender.send.Send(cmd.Context(), v.Path); err != nil {
						_ = notifier.NotifyError(cmd.Context(), err, "delivery")
						return err
					}
				}
				fmt.Fprintf(out, "Delivered %d volume(s) to %s\n", len(result.Volumes), sender.name)
				_ = notifier.NotifyDeliveryCompleted(cmd.Context(), title, sender.name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Work title used in volume file names")
	cmd.Flags().IntVar(&ceilingMB, "ceiling", 0, "Volume size ceiling in MB (overrides config)")
	cmd.Flags().StringVar(&coverPath, "cover", "", "Image file to insert as volume cover")
	cmd.Flags().StringArrayVar(&removePages, "remove-page", nil, "Page file name to drop from the first chapter (repeatable)")
	cmd.Flags().BoolVar(&email, "email", false, "Mail finished volumes to the configured Kindle address")
	cmd.Flags().StringVar(&copyTo, "copy-to", "", "Copy finished volumes into this library directory")
	cmd.Flags().BoolVar(&deleteInputs, "delete-inputs", false, "Delete the chapter archives after a successful run")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

type namedSender struct {
	name string
	send delivery.Sender
}

// buildSenders resolves the requested delivery destinations. Construction
// errors are reported immediately per destination; a destination that fails
// to construct is skipped so the volumes stay on disk for a retry.
func buildSenders(cmd *cobra.Command, ctx *commandContext, email bool, copyTo string) []namedSender {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil
	}

	var senders []namedSender
	if email || cfg.Email.Enabled {
		kindle, err := delivery.NewKindleSender(cfg.Email, logger)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "kindle delivery unavailable: %v\n", err)
		} else {
			senders = append(senders, namedSender{name: "kindle", send: kindle})
		}
	}
	if copyTo != "" {
		library, err := delivery.NewLibrarySender(copyTo, logger)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "library delivery unavailable: %v\n", err)
		} else {
			senders = append(senders, namedSender{name: copyTo, send: library})
		}
	}
	return senders
}

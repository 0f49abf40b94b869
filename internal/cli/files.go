package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/files"
)

var sessionIDs = ids("app id", "session id")

func newFilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"fs"},
		Short:   "Browse and sync the workspace of an app session",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "ls <app-id> <session-id> [dir]",
			Aliases: []string{"list"},
			Short:   "List a workspace directory",
			Args:    cobra.MatchAll(cobra.RangeArgs(2, 3), sessionIDs),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir := "/"
				if len(args) == 3 {
					dir = args[2]
				}
				entries, err := a.files.List(cmd.Context(), refArgs(args), dir)
				if err != nil {
					return err
				}
				return a.out.Files(entries)
			},
		},
		&cobra.Command{
			Use:   "cat <app-id> <session-id> <path>",
			Short: "Print a workspace file",
			Args:  cobra.MatchAll(cobra.ExactArgs(3), sessionIDs),
			RunE: func(cmd *cobra.Command, args []string) error {
				file, err := a.files.Read(cmd.Context(), refArgs(args), args[2])
				if err != nil {
					return err
				}
				if a.flags.json {
					return a.out.JSON(map[string]string{
						"path":      file.Path,
						"mime_type": file.MimeType,
						"content":   file.Content,
					})
				}
				_, err = io.WriteString(cmd.OutOrStdout(), file.Content)
				return err
			},
		},
		newWriteCmd(a),
		&cobra.Command{
			Use:   "find <app-id> <session-id> <pattern>",
			Short: "Find workspace files matching a glob such as **/*.py",
			Args:  cobra.MatchAll(cobra.ExactArgs(3), sessionIDs),
			RunE: func(cmd *cobra.Command, args []string) error {
				matches, err := a.files.Find(cmd.Context(), refArgs(args), args[2])
				if err != nil {
					return err
				}
				return a.out.Files(matches)
			},
		},
		newPushCmd(a),
		newExportCmd(a),
	)
	return cmd
}

func newWriteCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "write <app-id> <session-id> <path>",
		Short: "Write a workspace file from a local file or stdin",
		Args:  cobra.MatchAll(cobra.ExactArgs(3), sessionIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if from == "" || from == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(from)
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if !files.IsText(data) {
				return fmt.Errorf("refusing to write binary content to %s", args[2])
			}
			if err := a.files.Write(cmd.Context(), refArgs(args), args[2], string(data)); err != nil {
				return err
			}
			return a.out.Message("Wrote %s (%d bytes)", args[2], len(data))
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "local file to upload; stdin when empty or -")
	return cmd
}

func newPushCmd(a *app) *cobra.Command {
	var (
		to      string
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "push <app-id> <session-id> <local-dir>",
		Short: "Upload the text files of a local directory",
		Args:  cobra.MatchAll(cobra.ExactArgs(3), sessionIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.files.Push(cmd.Context(), refArgs(args), args[2], to, files.PushOptions{Exclude: exclude})
			if err != nil {
				return err
			}
			if a.flags.json {
				return a.out.JSON(map[string]any{"written": result.Written, "skipped": result.Skipped})
			}

			w := cmd.OutOrStdout()
			for _, p := range result.Written {
				fmt.Fprintf(w, "wrote   %s\n", p)
			}
			skipped := make([]string, 0, len(result.Skipped))
			for p := range result.Skipped {
				skipped = append(skipped, p)
			}
			sort.Strings(skipped)
			for _, p := range skipped {
				fmt.Fprintf(w, "skipped %s (%s)\n", p, result.Skipped[p])
			}
			_, err = fmt.Fprintf(w, "%d written, %d skipped\n", len(result.Written), len(result.Skipped))
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "/", "remote directory")
	cmd.Flags().StringSliceVar(&exclude, "exclude", []string{".git/**", "**/__pycache__/**", "**/node_modules/**"}, "doublestar patterns to skip")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		out         string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "export <app-id> <session-id>",
		Short: "Archive the whole workspace as a tar stream",
		Args:  cobra.MatchAll(cobra.ExactArgs(2), sessionIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := files.ParseCompression(compression)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			n, err := a.files.Export(cmd.Context(), refArgs(args), w, c)
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				return a.out.Message("Exported %d files to %s", n, out)
			}
			a.log.Sugar().Debugf("exported %d files", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "archive path; stdout when empty or -")
	cmd.Flags().StringVar(&compression, "compression", "zstd", "zstd, gzip or none")
	return cmd
}

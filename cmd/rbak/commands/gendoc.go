package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/rbak/internal/errors"
	"github.com/thoreinstein/rbak/internal/paths"
)

var genDocCmd = &cobra.Command{
	Use:         "gen-doc",
	Short:       "Generate reference documentation for the CLI",
	Hidden:      true,
	Args:        userArgs(cobra.NoArgs),
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		outputDir, _ := cmd.Flags().GetString("dir")
		format, _ := cmd.Flags().GetString("format")
		if err := generateDocs(outputDir, format); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().String("format", "markdown", "documentation format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

// generateDocs writes one page per command to outputDir.
func generateDocs(outputDir, format string) error {
	if outputDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --dir <path>")
	}

	if err := paths.EnsureDir(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	// Generated pages must not depend on when they were built.
	rootCmd.DisableAutoGenTag = true

	var err error
	switch format {
	case "markdown", "md":
		err = doc.GenMarkdownTreeCustom(rootCmd, outputDir, filePrepender, linkHandler)
	case "man":
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{Title: "RBAK", Section: "1"}, outputDir)
	default:
		return errors.NewUserError(errors.Newf("unknown documentation format %q", format),
			"Valid formats: markdown, man")
	}
	return errors.Wrapf(err, "generating %s documentation", format)
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// rbak_config_list.md -> rbak config list
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf("---\ntitle: %q\ndescription: %q\n---\n", title, "Reference for "+title)
}

func linkHandler(name string) string {
	return strings.ToLower(name)
}

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/config"
	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/manifest"
)

// rootManifest is the package.json written by init.
type rootManifest struct {
	Name            string            `json:"name"`
	Private         bool              `json:"private"`
	Workspaces      []string          `json:"workspaces"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var independent bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new monorail workspace",
		Long: `Create monorail.toml, a packages directory and a private root package.json
in the current directory. Existing files are left untouched.`,
		Example: `  monorail init
  monorail init --independent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(c.startDir())
			if err != nil {
				return err
			}
			return initWorkspace(root, independent)
		},
	}

	cmd.Flags().BoolVarP(&independent, "independent", "i", false, "version packages independently")
	return cmd
}

func initWorkspace(root string, independent bool) error {
	cfg := config.Default()
	if independent {
		cfg.Version = config.Independent
	}

	if exists(filepath.Join(root, config.FileName)) {
		printInfo("%s already exists", config.FileName)
	} else {
		if err := cfg.Write(root); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", config.FileName)
		}
		printSuccess("Created %s", config.FileName)
	}

	pkgPath := filepath.Join(root, manifest.FileName)
	if exists(pkgPath) {
		printInfo("%s already exists", manifest.FileName)
	} else {
		data, err := json.MarshalIndent(rootManifest{
			Name:            filepath.Base(root),
			Private:         true,
			Workspaces:      cfg.Packages,
			DevDependencies: map[string]string{},
		}, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(pkgPath, append(data, '\n'), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", manifest.FileName)
		}
		printSuccess("Created %s", manifest.FileName)
	}

	if err := os.MkdirAll(filepath.Join(root, "packages"), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create packages directory")
	}
	printSuccess("Initialized workspace in %s", root)
	if independent {
		printDetail("packages are versioned independently")
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

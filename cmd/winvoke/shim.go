package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sibikrish3000/winvoke/internal/shim"
)

var flagShimAs string

var shimCmd = &cobra.Command{
	Use:   "shim",
	Short: "Manage symlink shims for Windows commands",
	Long: `Shims make a Windows tool invocable as a bare Linux command. A shim is
a symlink to winvoke under the chosen name; invoking it bridges the
recorded Windows command.`,
}

var shimInstallCmd = &cobra.Command{
	Use:   "install <target>",
	Short: "Install a shim for a Windows command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		name := flagShimAs
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate winvoke binary: %w", err)
		}
		if err := reg.Install(name, target, self); err != nil {
			return err
		}
		fmt.Printf("installed shim %q -> %s\n", name, target)
		return nil
	},
}

var shimListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed shims",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		entries := reg.Entries()
		if len(entries) == 0 {
			fmt.Println("no shims installed")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s\t%s\t%s\n", e.Name, e.Target, e.InstalledAt.Format("2006-01-02"))
		}
		return nil
	},
}

var shimRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an installed shim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := reg.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("removed shim %q\n", args[0])
		return nil
	},
}

func init() {
	shimInstallCmd.Flags().StringVar(&flagShimAs, "as", "", "shim name (defaults to the target's basename without extension)")
	shimCmd.AddCommand(shimInstallCmd, shimListCmd, shimRemoveCmd)
}

func shimDirs() (configDir, binDir string, err error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("locate config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("locate home dir: %w", err)
	}
	return filepath.Join(base, "winvoke"), filepath.Join(home, ".local", "bin"), nil
}

func openRegistry() (*shim.Registry, error) {
	configDir, binDir, err := shimDirs()
	if err != nil {
		return nil, err
	}
	return shim.Open(configDir, binDir)
}

// openRegistryQuiet returns the registry or an empty one; shimmed
// invocations fall back to argv[0] as the command name either way.
func openRegistryQuiet() *shim.Registry {
	reg, err := openRegistry()
	if err != nil {
		return &shim.Registry{}
	}
	return reg
}

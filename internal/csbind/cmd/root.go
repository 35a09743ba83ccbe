package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"csbind/internal/csbind/log"
)

var rootCmd = newRootCmd()

// newRootCmd builds the command tree. Tests build their own so flag state
// does not leak between runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "csbind",
		Short: "Disassemble machine code with Capstone",
		Long: `csbind decodes machine code for x86, ARM, ARM64, MIPS, PowerPC, SPARC,
SystemZ and XCore through the Capstone engine.`,
		Example: `
# Disassemble x86-64 bytes given as hex
csbind disasm 31ed4989d1

# Disassemble the .text section of an ELF file with operand detail
csbind disasm --elf /bin/true --detail --count 20

# Browse an ELF file interactively
csbind browse /bin/true
  `,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if path, _ := cmd.Flags().GetString("config"); path != "" && !debug {
				cfg, err := LoadConfig(path)
				if err != nil {
					return err
				}
				debug = cfg.Debug
			}
			log.Setup(debug)
			slog.Debug("Starting", "command", cmd.Name(), "args", args)
			return nil
		},
	}

	root.PersistentFlags().BoolP("debug", "d", false, "Debug")
	root.PersistentFlags().StringP("config", "c", "", "JSON configuration file")

	root.AddCommand(
		newDisasmCmd(),
		newVerifyCmd(),
		newInfoCmd(),
		newBrowseCmd(),
		newSchemaCmd(),
	)
	return root
}

func Execute() {
	// Piped output skips fang's styled help and error rendering.
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the command writes to a terminal rather than a
// pipe or a test buffer.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

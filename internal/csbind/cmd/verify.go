package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"csbind/internal/crosscheck"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [hex...]",
		Short: "Compare instruction boundaries with golang.org/x/arch",
		Long: `Decode the input with Capstone and again with the decoders of
golang.org/x/arch (x86 16/32/64 and little-endian arm64), then report every
instruction the two disagree on. Length disagreements make the command fail;
mnemonic differences are listed as notes since the decoders spell some
instructions differently.`,
		Example: `
# Check a few x86-64 instructions
csbind verify 31ed4989d1c3

# Check the .text section of an ELF file
csbind verify --elf /bin/true
  `,
		RunE: runVerify,
	}
	addDecodeFlags(cmd)
	cmd.Flags().Bool("all", false, "Also list mnemonic differences")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	in, err := loadInput(cmd, args, cfg)
	if err != nil {
		return err
	}
	defer in.Close()

	s, err := decode(cmd, cfg, in)
	if err != nil {
		return err
	}
	report, err := crosscheck.Check(in.arch, in.mode, in.code, in.va, s)
	if errors.Is(err, crosscheck.ErrNoReference) {
		return fmt.Errorf("verify %s: %w", in.arch, err)
	}
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	out := cmd.OutOrStdout()
	for _, m := range report.Mismatches {
		if m.Kind == crosscheck.KindMnemonic && !all {
			continue
		}
		if name := in.label(m.VA); name != "" {
			fmt.Fprintf(out, "%s  <%s>\n", m, name)
			continue
		}
		fmt.Fprintln(out, m)
	}
	fmt.Fprintf(out, "checked %d, skipped %d, mismatches %d (length %d)\n",
		report.Checked, report.Skipped, len(report.Mismatches), report.Lengths())

	slog.Debug("Verified", "arch", in.arch, "checked", report.Checked, "mismatches", len(report.Mismatches))
	if n := report.Lengths(); n > 0 {
		return fmt.Errorf("%d instruction boundary mismatches", n)
	}
	return nil
}

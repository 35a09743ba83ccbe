package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"csbind/internal/capstone"
	"csbind/internal/ui/styles"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the linked Capstone version and supported architectures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if isTerminal(cmd) {
				fmt.Fprint(out, styles.Render(engineSummary(), 80))
				return nil
			}
			fmt.Fprint(out, plainSummary())
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// engineSummary describes the linked library as markdown.
func engineSummary() string {
	major, minor := capstone.Version()
	var b strings.Builder
	fmt.Fprintf(&b, "# Capstone %d.%d\n\n", major, minor)
	b.WriteString("| Architecture | Supported |\n|---|---|\n")
	for _, arch := range capstone.Architectures {
		fmt.Fprintf(&b, "| %s | %s |\n", arch, yesNo(capstone.SupportArch(arch)))
	}
	fmt.Fprintf(&b, "\n- diet build: %s\n", yesNo(capstone.Support(capstone.SupportDiet)))
	fmt.Fprintf(&b, "- x86 reduce: %s\n", yesNo(capstone.Support(capstone.SupportX86Reduce)))
	return b.String()
}

func plainSummary() string {
	major, minor := capstone.Version()
	var b strings.Builder
	fmt.Fprintf(&b, "capstone %d.%d\n", major, minor)
	var archs []string
	for _, arch := range capstone.Architectures {
		if capstone.SupportArch(arch) {
			archs = append(archs, arch.String())
		}
	}
	fmt.Fprintf(&b, "architectures: %s\n", strings.Join(archs, " "))
	fmt.Fprintf(&b, "diet: %s\n", yesNo(capstone.Support(capstone.SupportDiet)))
	fmt.Fprintf(&b, "x86 reduce: %s\n", yesNo(capstone.Support(capstone.SupportX86Reduce)))
	return b.String()
}

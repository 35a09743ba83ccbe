package styles

import (
	"strings"
	"testing"

	"csbind/internal/ui/colorize"
)

func TestRenderKeepsContent(t *testing.T) {
	out := Render("# csbind\n\n- **x86**: supported\n", 80)
	plain := colorize.StripANSI(out)
	for _, want := range []string{"csbind", "x86", "supported"} {
		if !strings.Contains(plain, want) {
			t.Errorf("rendered output lacks %q: %q", want, plain)
		}
	}
}

func TestCodeBlockTheme(t *testing.T) {
	if got := MarkdownStyle().CodeBlock.Theme; got != colorize.ListingDark.Name {
		t.Errorf("code block theme = %q", got)
	}
}

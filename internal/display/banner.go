package display

import (
	_ "embed"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner centres the banner art for the current terminal width and
// applies the banner style line by line. The art is never scaled; replace
// banner.txt to change it.
func RenderBanner() string {
	lines := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")

	widest := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > widest {
			widest = n
		}
	}

	indent := ""
	if cols := termWidth(); cols > widest {
		indent = strings.Repeat(" ", (cols-widest)/2)
	}

	var out strings.Builder
	for _, line := range lines {
		out.WriteString(indent)
		out.WriteString(BannerStyle.Render(line))
		out.WriteByte('\n')
	}
	return out.String()
}

func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}

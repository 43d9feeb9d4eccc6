package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/cognite/powerops/internal/iostreams"
	"github.com/cognite/powerops/internal/theme"
)

// ColorEnabled reports whether w is a terminal that should receive styled output.
func ColorEnabled(w io.Writer) bool {
	return iostreams.IsTerminal(w)
}

// Render writes one section per differing kind. A nil palette renders plain text.
func Render(w io.Writer, r Report, palette *theme.Palette) error {
	if palette == nil {
		_, err := io.WriteString(w, r.String())
		return err
	}

	heading := palette.ForegroundStyle(theme.ColorHeading).Bold(true)
	styles := map[string]func(...string) string{
		MissingInRemote: palette.ForegroundStyle(theme.ColorSuccess).Render,
		MissingInLocal:  palette.ForegroundStyle(theme.ColorDanger).Render,
		Changed:         palette.ForegroundStyle(theme.ColorWarning).Render,
	}

	for _, kind := range r.Kinds() {
		if _, err := fmt.Fprintln(w, heading.Render(Header(kind))); err != nil {
			return err
		}
		for _, line := range strings.Split(r[kind], "\n") {
			for label, style := range styles {
				if strings.HasPrefix(line, label) {
					line = style(label) + line[len(label):]
					break
				}
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

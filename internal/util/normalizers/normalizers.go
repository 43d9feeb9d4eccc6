// Package normalizers tidies the raw-string help text of commands.
package normalizers

import (
	"strings"
)

const Indentation = `  `

// LongDesc trims surrounding blank lines and removes the indentation common to
// every line, so descriptions can be indented like the code around them.
func LongDesc(s string) string {
	return strings.Join(dedent(s), "\n")
}

// Examples dedents s and then indents every line by Indentation, the way cobra
// expects example blocks.
func Examples(s string) string {
	lines := dedent(s)
	if len(lines) == 0 {
		return ""
	}
	for i, line := range lines {
		if line != "" {
			lines[i] = Indentation + line
		}
	}
	return strings.Join(lines, "\n")
}

func dedent(s string) []string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	margin := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || n < margin {
			margin = n
		}
	}

	for i, line := range lines {
		if len(line) >= margin {
			lines[i] = strings.TrimRight(line[margin:], " \t")
		} else {
			lines[i] = ""
		}
	}
	return lines
}

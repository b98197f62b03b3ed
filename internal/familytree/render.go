// Package familytree renders the indentation-based family description text
// as a box-drawing tree.
package familytree

import "strings"

// rootSeparator is printed before every top-level person.
const rootSeparator = "\n───────────────────────\n"

// Render converts the raw text into a tree. Each leading space counts one
// level of depth; dashes are decoration and stripped. Blank lines are
// ignored.
func Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	var b strings.Builder
	lastChild := map[int]bool{}

	for i, line := range lines {
		depth := leadingSpaces(line)
		name := strings.TrimLeft(strings.ReplaceAll(line, "-", ""), " ")

		isLast := isLastChild(lines, i, depth)
		if depth > 0 {
			lastChild[depth-1] = isLast
		}

		if depth == 0 {
			b.WriteString(rootSeparator)
		} else {
			for lvl := 0; lvl < depth; lvl++ {
				if lvl == depth-1 {
					if isLast {
						b.WriteString("└── ")
					} else {
						b.WriteString("├── ")
					}
					continue
				}
				// Levels never seen yet count as finished branches.
				ancestorLast := true
				if v, ok := lastChild[lvl]; ok {
					ancestorLast = v
				}
				if ancestorLast {
					b.WriteString("    ")
				} else {
					b.WriteString("│   ")
				}
			}
		}
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return b.String()
}

// isLastChild looks ahead for the next sibling at the same depth. Reaching a
// shallower line, or the end of input, means the current line closes its
// parent's branch.
func isLastChild(lines []string, index, depth int) bool {
	for i := index + 1; i < len(lines); i++ {
		next := leadingSpaces(lines[i])
		if next < depth {
			return true
		}
		if next == depth {
			return false
		}
	}
	return true
}

func leadingSpaces(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// Validate reports whether the text is worth saving.
func Validate(text string) bool {
	return strings.TrimSpace(text) != ""
}

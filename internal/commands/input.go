package commands

import "strings"

// Line splits a typed line into command arguments. Both "cmd cut ..." and a bare "cut ..." are
// accepted; a bare line only counts when its first word is a registered command.
func (r *Registry) Line(line string) ([]string, bool) {
	if args, ok := Parse(line); ok {
		return args, true
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	if _, ok := r.cmds[fields[0]]; !ok {
		return nil, false
	}
	return fields, true
}

// Complete extends the command word of input to the longest prefix shared by every matching
// command name. A unique match gets a trailing space. Input past the command word is left alone.
func (r *Registry) Complete(input string) string {
	lead, word := splitWord(input)
	if word == "" || strings.ContainsAny(word, " ") {
		return input
	}
	matches := r.matching(word)
	if len(matches) == 0 {
		return input
	}
	if len(matches) == 1 {
		return lead + matches[0] + " "
	}
	common := matches[0]
	for _, m := range matches[1:] {
		for !strings.HasPrefix(m, common) {
			common = common[:len(common)-1]
		}
	}
	return lead + common
}

// Hint is the help line drawn above the input bar: the usage of the command being typed, the
// candidates while its name is still partial, or nothing.
func (r *Registry) Hint(input string) string {
	_, word := splitWord(input)
	if word == "" {
		return ""
	}
	name, rest, _ := strings.Cut(word, " ")
	if _, ok := r.cmds[name]; ok && (rest != "" || strings.HasSuffix(input, " ")) {
		return r.Usage(name)
	}
	matches := r.matching(name)
	switch len(matches) {
	case 0:
		return "no command " + name
	case 1:
		return r.Usage(matches[0])
	}
	return strings.Join(matches, "  ")
}

func (r *Registry) matching(prefix string) []string {
	var out []string
	for _, n := range r.Names() {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

// splitWord separates an optional "cmd " lead from the rest of input, left-trimmed.
func splitWord(input string) (lead, word string) {
	if strings.HasPrefix(input, prefix) {
		return prefix, strings.TrimLeft(input[len(prefix):], " ")
	}
	return "", strings.TrimLeft(input, " ")
}

// History keeps submitted lines for recall with the arrow keys. The cursor sits one past the
// newest entry until Prev moves it back.
type History struct {
	lines  []string
	cursor int
	max    int
}

// NewHistory keeps at most max lines; max <= 0 keeps everything.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Push records line unless it repeats the newest entry, and resets the cursor.
func (h *History) Push(line string) {
	if line == "" {
		return
	}
	if n := len(h.lines); n == 0 || h.lines[n-1] != line {
		h.lines = append(h.lines, line)
		if h.max > 0 && len(h.lines) > h.max {
			h.lines = h.lines[len(h.lines)-h.max:]
		}
	}
	h.cursor = len(h.lines)
}

// Prev steps back one line, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.lines[h.cursor], true
}

// Next steps forward; past the newest line it returns "" so the input clears.
func (h *History) Next() string {
	if h.cursor < len(h.lines) {
		h.cursor++
	}
	if h.cursor == len(h.lines) {
		return ""
	}
	return h.lines[h.cursor]
}

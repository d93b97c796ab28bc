package render

import (
	"fmt"
	"math"
	"strings"
)

const (
	sgrBold      = "1"
	sgrUnderline = "4"
	sgrBlink     = "5"
	sgrNegative  = "7"

	bgRed    = "41"
	bgGreen  = "42"
	bgYellow = "43"
)

// styled wraps s in SGR escapes. No codes, no escapes.
func styled(s string, codes ...string) string {
	var set []string
	for _, c := range codes {
		if c != "" {
			set = append(set, c)
		}
	}
	if len(set) == 0 || s == "" {
		return s
	}
	return "\033[" + strings.Join(set, ";") + "m" + s + "\033[0m"
}

// BarOptions mirror the -c, -r and -f flags.
type BarOptions struct {
	Color   bool
	Reverse bool
	Fill    bool
}

type level struct {
	upTo  float64
	bg    string
	style []string
}

// Bars at or under upTo percent use that level's background and style.
var levels = []level{
	{65, bgGreen, []string{sgrNegative, sgrUnderline}},
	{85, bgYellow, []string{sgrBold, sgrNegative, sgrUnderline}},
	{math.Inf(1), bgRed, []string{sgrBlink, sgrBold, sgrNegative, sgrUnderline}},
}

// Bar draws "[text]" in length columns with the used share highlighted.
// text replaces the "P% (U/TGB)" description when non-empty. A zero total
// counts as unlimited.
func Bar(opts BarOptions, text string, used, total float64, length int) string {
	percent := 0.0
	if total > 0 {
		percent = 100 * used / total
	}

	bg := ""
	style := []string{sgrUnderline}
	for _, l := range levels {
		if percent <= l.upTo {
			if opts.Color {
				bg = l.bg
			}
			if opts.Reverse {
				style = l.style
			}
			break
		}
	}
	fillStyle := ""
	if opts.Color || opts.Reverse {
		fillStyle = sgrUnderline
	}

	length -= 2
	if length < 0 {
		length = 0
	}
	usedLen := 0
	if total > 0 {
		usedLen = int(math.Ceil(float64(length) * used / total))
	}
	usedLen = min(max(usedLen, 0), length)

	if text == "" {
		text = fmt.Sprintf("%.1f%% (%.0f/%.0fGB)", percent, math.Round(used), math.Round(total))
	}
	text = fitRunes(text, length)

	head, tail := string([]rune(text)[:usedLen]), string([]rune(text)[usedLen:])
	if opts.Fill {
		head = strings.ReplaceAll(head, " ", "=")
		tail = strings.ReplaceAll(tail, " ", "-")
	}
	return "[" + styled(head, append([]string{bg}, style...)...) + styled(tail, fillStyle) + "]"
}

// fitRunes pads s with spaces or truncates it to exactly n runes.
func fitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) >= n {
		return string(r[:n])
	}
	return s + strings.Repeat(" ", n-len(r))
}

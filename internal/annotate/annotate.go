package annotate

import (
	"regexp"
	"strings"
	"sync"

	"github.com/daikw/angertranslator/internal/persona"
)

var (
	capsRun = `\p{Lu}{3,}`
	// Ellipses trigger pause cues; each exclamation mark triggers a reaction cue.
	punctuationTriggers = `\.{3,}|…|!`

	mildPattern        = regexp.MustCompile(capsRun + `|` + punctuationTriggers)
	punctuationPattern = regexp.MustCompile(punctuationTriggers)

	triggerPatterns sync.Map // persona.ID -> *regexp.Regexp
)

// Annotate produces annotated text for rawText delivered by the given persona at intensity.
// Unknown personas use the generic rule and out-of-range intensities are clamped.
// The result depends only on the arguments.
func Annotate(rawText string, id persona.ID, intensity int) string {
	intensity = persona.ClampIntensity(intensity)
	rule := persona.Lookup(id)
	bracket := persona.BracketFor(intensity)

	pattern := mildPattern
	if bracket >= persona.Moderate {
		pattern = triggerPattern(rule)
	}
	react := intensity >= persona.ReactionThreshold

	var b strings.Builder
	for _, cue := range rule.OpeningCues(intensity) {
		writeCue(&b, cue)
		b.WriteByte(' ')
	}

	// Cues go directly after their trigger so that removing them restores the text.
	mark := func(m string) string {
		switch {
		case strings.HasPrefix(m, ".") || m == "…":
			return m + "[" + rule.PauseCue + "]"
		case m == "!":
			if !react {
				return m
			}
			return m + "[" + rule.ReactionCue + "]"
		default:
			return "**" + m + "**"
		}
	}

	body := strings.TrimSpace(rawText)
	for _, tok := range Scan(body) {
		if tok.Kind != TokenLiteral {
			b.WriteString(tok.Text)
			continue
		}
		text, rest := tok.Text, ""
		if idx := strayIndex(text); idx >= 0 {
			text, rest = text[:idx], text[idx:]
		}
		b.WriteString(pattern.ReplaceAllStringFunc(text, mark))
		// A new span after a stray "**" would pair with it, so only cues go there.
		b.WriteString(punctuationPattern.ReplaceAllStringFunc(rest, mark))
	}

	if bracket == persona.Severe && rule.ClosingCue != "" {
		b.WriteByte(' ')
		writeCue(&b, rule.ClosingCue)
	}
	return strings.TrimSpace(b.String())
}

func writeCue(b *strings.Builder, cue string) {
	b.WriteByte('[')
	b.WriteString(cue)
	b.WriteByte(']')
}

// triggerPattern matches caps runs, punctuation triggers and the persona's trigger words.
func triggerPattern(rule persona.Rule) *regexp.Regexp {
	if cached, ok := triggerPatterns.Load(rule.ID); ok {
		return cached.(*regexp.Regexp)
	}
	if len(rule.TriggerWords) == 0 {
		return mildPattern
	}

	quoted := make([]string, len(rule.TriggerWords))
	for i, w := range rule.TriggerWords {
		quoted[i] = regexp.QuoteMeta(w)
	}
	re := regexp.MustCompile(`(?i:\b(?:` + strings.Join(quoted, "|") + `)\b)|` + capsRun + `|` + punctuationTriggers)
	actual, _ := triggerPatterns.LoadOrStore(rule.ID, re)
	return actual.(*regexp.Regexp)
}

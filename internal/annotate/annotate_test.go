package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daikw/angertranslator/internal/persona"
)

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		persona   persona.ID
		intensity int
		want      string
	}{
		{
			name:      "mild adds opening cue and pause",
			text:      "Please respond to my email...",
			persona:   persona.Karen,
			intensity: 10,
			want:      "[indignant] Please respond to my email...[pause]",
		},
		{
			name:      "severe adds reactions, trigger emphasis and closing cue",
			text:      "I need the MANAGER now! This is unacceptable!",
			persona:   persona.Karen,
			intensity: 80,
			want:      "[exasperated] [shrill] [outraged] I need the **MANAGER** now![gasps] This is **unacceptable**![gasps] [demands manager]",
		},
		{
			name:      "severe below reaction threshold",
			text:      "Stop!",
			persona:   persona.Enforcer,
			intensity: 65,
			want:      "[barking] [shouting] [furious] Stop! [slams desk]",
		},
		{
			name:      "existing cues and spans are preserved",
			text:      "[sighs] That is **frick** WRONG",
			persona:   persona.Corporate,
			intensity: 40,
			want:      "[polite] [tight-lipped] [sighs] That is **frick** **WRONG**",
		},
		{
			name:      "unterminated marker is left alone",
			text:      "hello **WORLD",
			persona:   persona.ID("pirate"),
			intensity: 10,
			want:      "[annoyed] hello **WORLD",
		},
		{
			name:      "cues after an unterminated marker",
			text:      "hello **WORLD... now!",
			persona:   persona.Karen,
			intensity: 80,
			want:      "[exasperated] [shrill] [outraged] hello **WORLD...[pause] now![gasps] [demands manager]",
		},
		{
			name:      "every exclamation mark gets a reaction",
			text:      "NOPE!!!",
			persona:   persona.CrackedController,
			intensity: 100,
			want:      "[yelling] [screaming] [raging] **NOPE**![screams]![screams]![screams] [controller smash]",
		},
		{
			name:      "emphasis next to punctuation",
			text:      "This is UNACCEPTABLE!",
			persona:   persona.Karen,
			intensity: 10,
			want:      "[indignant] This is **UNACCEPTABLE**!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Annotate(tt.text, tt.persona, tt.intensity))
		})
	}
}

func TestAnnotateUnknownPersonaNeverEmpty(t *testing.T) {
	for _, id := range []persona.ID{"", "pirate", "ENFORCER", "generic"} {
		for _, intensity := range []int{-50, 0, 45, 100, 1000} {
			got := Annotate("fine.", id, intensity)
			assert.NotEmpty(t, got, "persona %q intensity %d", id, intensity)
		}
	}
}

func TestAnnotateClampsIntensity(t *testing.T) {
	assert.Equal(t, Annotate("WHY...", persona.Don, 100), Annotate("WHY...", persona.Don, 500))
	assert.Equal(t, Annotate("WHY...", persona.Don, 0), Annotate("WHY...", persona.Don, -5))
}

func TestAnnotateIsDeterministic(t *testing.T) {
	text := "Could you PLEASE stop... it is the third time!"
	for _, id := range persona.All() {
		first := Annotate(text, id, 90)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Annotate(text, id, 90))
		}
	}
}

func TestAnnotateOutputParsesCleanly(t *testing.T) {
	texts := []string{
		"Why is the LAG so bad... I said AGAIN and I am done!",
		"This is UNACCEPTABLE!",
		"NO!!! Not AGAIN...now, please!",
	}
	for _, text := range texts {
		for _, id := range persona.All() {
			for _, intensity := range []int{10, 50, 95} {
				annotated := Annotate(text, id, intensity)
				assert.NotContains(t, StripEmphasis(annotated), "**", "persona %s produced an unterminated span", id)
				assert.Equal(t, PlainText(annotated), JoinContent(ParseSegments(annotated)), "persona %s intensity %d", id, intensity)
				assert.Equal(t, text, PlainText(annotated), "persona %s intensity %d", id, intensity)
			}
		}
	}
}

func TestAnnotateAfterUnterminatedMarker(t *testing.T) {
	text := "hello **WORLD... now!"
	for _, id := range persona.All() {
		annotated := Annotate(text, id, 95)
		assert.Contains(t, annotated, "...["+persona.Lookup(id).PauseCue+"]")
		assert.Contains(t, annotated, "!["+persona.Lookup(id).ReactionCue+"]")
		assert.NotContains(t, annotated, "**WORLD**")
		assert.Equal(t, text, ToDisplayText(annotated))
		assert.Equal(t, []Segment{{Kind: SegmentText, Content: text, Cues: Cues(annotated)}}, ParseSegments(annotated))
	}
}

func TestScanReproducesInput(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"[angry] This is **BLEEP** bad!",
		"hello **world",
		"***a** [x][y] ** **",
		"[a[b]c] **a*b**",
		"日本語 **ばか** [怒り]",
	}
	for _, in := range inputs {
		var b strings.Builder
		for _, tok := range Scan(in) {
			b.WriteString(tok.Text)
		}
		assert.Equal(t, in, b.String())
	}
}

func TestScanTokenKinds(t *testing.T) {
	toks := Scan("***a** [x]")
	kinds := make([]TokenKind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []TokenKind{TokenLiteral, TokenSpan, TokenLiteral, TokenCue}, kinds)
	assert.Equal(t, "*", toks[0].Text)
	assert.Equal(t, "a", toks[1].Inner)
	assert.Equal(t, "x", toks[3].Inner)
}

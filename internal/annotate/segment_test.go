package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daikw/angertranslator/internal/persona"
)

func TestParseSegments(t *testing.T) {
	tests := []struct {
		name      string
		annotated string
		want      []Segment
	}{
		{
			name:      "cues stripped and order preserved",
			annotated: "[angry] This is **BLEEP** bad!",
			want: []Segment{
				{Kind: SegmentText, Content: "This is", Cues: []string{"angry"}},
				{Kind: SegmentBleep, Content: "BLEEP", SpaceBefore: true},
				{Kind: SegmentText, Content: "bad!", SpaceBefore: true},
			},
		},
		{
			name:      "unterminated marker stays literal",
			annotated: "hello **world",
			want:      []Segment{{Kind: SegmentText, Content: "hello **world"}},
		},
		{
			name:      "trailing unmatched marker after a span",
			annotated: "**frick** that ** noise",
			want: []Segment{
				{Kind: SegmentBleep, Content: "frick"},
				{Kind: SegmentText, Content: "that ** noise", SpaceBefore: true},
			},
		},
		{
			name:      "adjacent bleeps",
			annotated: "**a** **b**",
			want: []Segment{
				{Kind: SegmentBleep, Content: "a"},
				{Kind: SegmentBleep, Content: "b", SpaceBefore: true},
			},
		},
		{
			name:      "cues before a bleep carry to the next text",
			annotated: "[stern] **x** [growls] tail",
			want: []Segment{
				{Kind: SegmentBleep, Content: "x"},
				{Kind: SegmentText, Content: "tail", Cues: []string{"stern", "growls"}, SpaceBefore: true},
			},
		},
		{
			name:      "span content is trimmed",
			annotated: "say ** darn ** again",
			want: []Segment{
				{Kind: SegmentText, Content: "say"},
				{Kind: SegmentBleep, Content: "darn", SpaceBefore: true},
				{Kind: SegmentText, Content: "again", SpaceBefore: true},
			},
		},
		{
			name:      "span inside a word",
			annotated: "word**x**word",
			want: []Segment{
				{Kind: SegmentText, Content: "word"},
				{Kind: SegmentBleep, Content: "x"},
				{Kind: SegmentText, Content: "word"},
			},
		},
		{
			name:      "punctuation right after a span",
			annotated: "[cue] **a**, then",
			want: []Segment{
				{Kind: SegmentBleep, Content: "a"},
				{Kind: SegmentText, Content: ", then", Cues: []string{"cue"}},
			},
		},
		{
			name:      "cues inside a span are removed",
			annotated: "a **b [x] c** d",
			want: []Segment{
				{Kind: SegmentText, Content: "a"},
				{Kind: SegmentBleep, Content: "b c", SpaceBefore: true},
				{Kind: SegmentText, Content: "d", SpaceBefore: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSegments(tt.annotated))
		})
	}
}

func TestParseSegmentsDropsEmpty(t *testing.T) {
	assert.Empty(t, ParseSegments(""))
	assert.Empty(t, ParseSegments("   [pause]  "))
	assert.Empty(t, ParseSegments("** **"))
	assert.Empty(t, ParseSegments("**[x]**"))
}

func TestParseSegmentsRoundTrip(t *testing.T) {
	inputs := []string{
		"[stern] Listen **UP** you [growls] lazy **frick** recruits!",
		"[dry] Oh **wonderful** another meeting... [pause] [slow clap]",
		"No markers at all",
		"word**x**word",
		"[cue] **a**, then",
		"a **b [x] c** d",
		"b[x]**a**",
		"**a**[x]b",
		"*[x]**a**",
		"*[x]*a**",
		"x ** ** y",
		"a** **b",
		"[a[b]c]**x**[d]",
		"tabs\tbefore\n**x**\tafter",
		Annotate("This is UNACCEPTABLE!", persona.Karen, 10),
	}
	for _, in := range inputs {
		assert.Equal(t, PlainText(in), JoinContent(ParseSegments(in)), "input %q", in)
	}
}

func TestJoinContent(t *testing.T) {
	assert.Equal(t, "This is UNACCEPTABLE!", JoinContent(ParseSegments("[indignant] This is **UNACCEPTABLE**!")))
	assert.Equal(t, "wordxword", JoinContent(ParseSegments("word**x**word")))
	assert.Equal(t, "a, then", JoinContent(ParseSegments("[cue] **a**, then")))
	assert.Empty(t, JoinContent(nil))
}

func TestToDisplayText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[angry]  This   is **BLEEP**\n bad! [huffs]", "This is **BLEEP** bad!"},
		{"word[cue]word", "wordword"},
		{"stop![gasps] now", "stop! now"},
		{"[a[b]c] ok", "ok"},
		{"[] stays", "[] stays"},
		{"  **keep**  me ", "**keep** me"},
		{"a **b [x] c** d", "a **b c** d"},
		{"**[x]**", "** **"},
		{"*[x]*a**", "* *a**"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToDisplayText(tt.in), "input %q", tt.in)
	}
}

func TestToDisplayTextIdempotent(t *testing.T) {
	inputs := []string{
		"[angry] This is **BLEEP** bad!",
		"[a[b]c] [[x]] ]] [[",
		"tabs\tand\nnewlines [cue]\t**x**",
		"hello **world",
		"[x\ny] z",
		"a **b [x] c** d",
		"**[x]**",
		"*[x]*a**",
	}
	for _, in := range inputs {
		once := ToDisplayText(in)
		assert.Equal(t, once, ToDisplayText(once), "input %q", in)
	}
}

func TestCues(t *testing.T) {
	assert.Equal(t, []string{"angry", "pause"}, Cues("[angry] hi... [ pause ] **x**"))
	assert.Nil(t, Cues("none"))
}

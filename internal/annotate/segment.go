package annotate

import "strings"

// SegmentKind discriminates playback segments
type SegmentKind string

const (
	SegmentText  SegmentKind = "text"
	SegmentBleep SegmentKind = "bleep"
)

// Segment is one ordered playback unit. Content is never empty.
// Cues lists the tone cues that were removed from a text segment.
// SpaceBefore reports whether the source had whitespace between the previous
// segment and this one.
type Segment struct {
	Kind        SegmentKind `json:"type"`
	Content     string      `json:"content"`
	Cues        []string    `json:"cues,omitempty"`
	SpaceBefore bool        `json:"space_before,omitempty"`
}

// ParseSegments splits annotated text at span boundaries. Span content becomes a bleep
// segment; text between spans becomes a text segment after display sanitizing.
// Empty segments are dropped and an unterminated "**" stays in the surrounding text.
func ParseSegments(annotated string) []Segment {
	var (
		segments []Segment
		buf      strings.Builder
		cues     []string
		before   byte // byte preceding buf in annotated
		gap      bool // whitespace since the last segment
	)

	emit := func(seg Segment) {
		seg.SpaceBefore = gap && len(segments) > 0
		segments = append(segments, seg)
		gap = false
	}
	flushText := func(after byte) {
		raw := stripCues(buf.String(), before, after)
		buf.Reset()
		text := collapseWhitespace(raw)
		if text == "" {
			// Cues without text carry over to the next text segment.
			gap = gap || raw != ""
			return
		}
		gap = gap || leadingSpace(raw)
		emit(Segment{Kind: SegmentText, Content: text, Cues: cues})
		cues = nil
		gap = trailingSpace(raw)
	}

	for _, tok := range Scan(annotated) {
		switch tok.Kind {
		case TokenSpan:
			flushText('*')
			if content := collapseWhitespace(stripCues(tok.Inner, '*', '*')); content != "" {
				emit(Segment{Kind: SegmentBleep, Content: content})
			}
			before = '*'
		case TokenCue:
			buf.WriteString(tok.Text)
			cues = append(cues, strings.TrimSpace(tok.Inner))
		default:
			buf.WriteString(tok.Text)
		}
	}
	flushText(0)

	return segments
}

// JoinContent concatenates segment contents, with a space wherever the source had one.
func JoinContent(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 && seg.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(seg.Content)
	}
	return b.String()
}

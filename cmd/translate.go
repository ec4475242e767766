package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/annotate"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/translator"
)

var (
	spanColor = color.New(color.FgRed, color.Bold)
	cueColor  = color.New(color.FgCyan, color.Faint)
	nameColor = color.New(color.FgYellow, color.Bold)
)

// translate runs one translation with the configured generator and limiter.
func translate(ctx context.Context, a *app, c *cli.Command) (*translator.Result, error) {
	text, err := readText(c, os.Stdin)
	if err != nil {
		return nil, err
	}
	gen, err := a.generator(ctx, c)
	if err != nil {
		return nil, describeError(err)
	}
	defaults := translationDefaults(c)

	svc := translator.New(gen,
		translator.WithAdmitter(a.admitter()),
		translator.WithPolicy(a.policy()),
		translator.WithTimeout(a.cfg.RequestTimeout))
	res, err := svc.Translate(ctx, a.identity(ctx), translator.Request{Text: text, Persona: defaults.Persona, Intensity: defaults.Intensity})
	if err != nil {
		return nil, describeError(err)
	}
	return res, nil
}

func handleTranslate(ctx context.Context, c *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := translate(ctx, a, c)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(os.Stderr, "%s (%s, %d)\n", nameColor.Sprint(res.Persona.DisplayName()), persona.BracketFor(res.Intensity), res.Intensity)
	fmt.Println(renderDisplay(res.Display, c.Bool("censor")))
	if c.Bool("annotated") {
		fmt.Println(renderAnnotated(res.Annotated))
	}
	return nil
}

// renderDisplay highlights spans, or masks them when censor is set.
func renderDisplay(display string, censor bool) string {
	var b strings.Builder
	for _, tok := range annotate.Scan(display) {
		switch tok.Kind {
		case annotate.TokenSpan:
			if censor {
				b.WriteString(spanColor.Sprint(mask(tok.Inner)))
			} else {
				b.WriteString(spanColor.Sprint(tok.Inner))
			}
		default:
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

// renderAnnotated shows the speech view: cues dimmed, spans highlighted.
func renderAnnotated(annotated string) string {
	var b strings.Builder
	for _, tok := range annotate.Scan(annotated) {
		switch tok.Kind {
		case annotate.TokenCue:
			b.WriteString(cueColor.Sprint(tok.Text))
		case annotate.TokenSpan:
			b.WriteString(spanColor.Sprint(tok.Text))
		default:
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

// mask replaces a censored word with grawlix of the same length.
func mask(word string) string {
	const grawlix = "#$%&@!"
	n := utf8.RuneCountInString(strings.TrimSpace(word))
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(grawlix[i%len(grawlix)])
	}
	return b.String()
}

func handlePersonas(_ context.Context, _ *cli.Command) error {
	return writePersonas(os.Stdout)
}

func writePersonas(w io.Writer) error {
	fmt.Fprintln(w, "Available personas:")
	for _, id := range persona.All() {
		rule := persona.Lookup(id)
		if _, err := fmt.Fprintf(w, "  %-20s %s - %s\n", id, nameColor.Sprint(id.DisplayName()), rule.Description); err != nil {
			return err
		}
	}
	return nil
}

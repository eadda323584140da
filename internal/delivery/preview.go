package delivery

import (
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

// Preview prints what a dry run would have sent.
type Preview struct {
	W    io.Writer
	conv *converter.Converter
}

func NewPreview(w io.Writer) *Preview {
	return &Preview{
		W: w,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

func (p *Preview) Show(msg Message) error {
	var b strings.Builder
	b.WriteString("--- DRY RUN: email preview ---\n")
	fmt.Fprintf(&b, "To: %s\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString(msg.Text)
	b.WriteString("\n")

	if msg.HTML != "" {
		md, err := p.conv.ConvertString(msg.HTML)
		if err != nil {
			return fmt.Errorf("preview: render html: %w", err)
		}
		b.WriteString("--- HTML (as markdown) ---\n")
		b.WriteString(strings.TrimSpace(md))
		b.WriteString("\n")
	}

	_, err := io.WriteString(p.W, b.String())
	return err
}

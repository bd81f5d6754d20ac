package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FPDFLauncher is the pure-Go engine for hosts without Chrome. It lays the
// document text out as plain paragraphs and drops styling.
type FPDFLauncher struct {
	FontPath string // TTF with UTF-8 coverage; core Helvetica when empty
}

func (l FPDFLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &fpdfBrowser{fontPath: l.FontPath}, nil
}

type fpdfBrowser struct {
	fontPath string
}

func (b *fpdfBrowser) NewPage(context.Context) (Page, error) {
	return &fpdfPage{fontPath: b.fontPath}, nil
}

func (b *fpdfBrowser) Close() error { return nil }

type fpdfPage struct {
	fontPath string
	blocks   []textBlock
}

type textBlock struct {
	heading bool
	text    string
}

// SetContent walks the document tokens and keeps the visible text: headings
// and block-level elements end a line, table cells are joined with " | ".
func (p *fpdfPage) SetContent(_ context.Context, doc string) error {
	p.blocks = p.blocks[:0]
	var (
		line    strings.Builder
		heading bool
		skip    int
	)
	flush := func() {
		text := strings.Join(strings.Fields(line.String()), " ")
		text = strings.TrimSpace(strings.TrimSuffix(text, "|"))
		if text != "" {
			p.blocks = append(p.blocks, textBlock{heading: heading, text: text})
		}
		line.Reset()
		heading = false
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				flush()
				return nil
			}
			return z.Err()
		case html.TextToken:
			if skip == 0 {
				line.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head, atom.Style, atom.Script:
				skip++
			case atom.H1, atom.H2, atom.H3:
				flush()
				heading = true
			case atom.Br:
				flush()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head, atom.Style, atom.Script:
				if skip > 0 {
					skip--
				}
			case atom.H1, atom.H2, atom.H3, atom.P, atom.Div, atom.Tr, atom.Li, atom.Table:
				flush()
			case atom.Td, atom.Th:
				line.WriteString(" | ")
			}
		}
	}
}

func (p *fpdfPage) PDF(_ context.Context, opts Options) ([]byte, error) {
	size := gofpdf.SizeType{Wd: opts.PaperWidth, Ht: opts.PaperHeight}
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           size,
	})
	doc.SetMargins(opts.MarginLeft, opts.MarginTop, opts.MarginRight)
	doc.SetAutoPageBreak(true, opts.MarginBottom)

	font, tr := "Helvetica", doc.UnicodeTranslatorFromDescriptor("")
	if p.fontPath != "" {
		font, tr = "DejaVu", func(s string) string { return s }
		doc.AddUTF8Font(font, "", p.fontPath)
		doc.AddUTF8Font(font, "B", p.fontPath)
	}

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-opts.MarginBottom + 5)
		doc.SetFont(font, "", 9)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	for _, b := range p.blocks {
		if b.heading {
			doc.Ln(2)
			doc.SetFont(font, "B", 13)
			doc.MultiCell(0, 7, tr(b.text), "", "L", false)
			hr(doc, opts)
			continue
		}
		doc.SetFont(font, "", 10)
		doc.MultiCell(0, 5, tr(b.text), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hr(doc *gofpdf.Fpdf, opts Options) {
	y := doc.GetY() + 1
	doc.SetLineWidth(0.2)
	doc.Line(opts.MarginLeft, y, opts.PaperWidth-opts.MarginRight, y)
	doc.SetY(y + 2)
}

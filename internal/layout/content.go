// Package layout turns a content description into positioned units: it
// deconstructs blocks into characters (or keeps them whole), flows them
// into lines with real glyph metrics, and reports each unit's box. The
// boxes are the home positions of the simulation bodies, index-aligned with
// the unit slice.
package layout

import (
	"regexp"
	"strings"
)

// Style tags a character unit. The renderer derives colour and font from it.
type Style string

const (
	StyleHeading        Style = "heading"
	StyleParagraph      Style = "paragraph"
	StyleLink           Style = "link"
	StyleNumber         Style = "number"
	StyleGreeting       Style = "greeting"
	StyleSectionHeading Style = "section-heading"
	StyleBlock          Style = "block"
)

// Block is one entry of a content description: a Section, ListItem or
// Image value.
type Block interface {
	isBlock()
}

// Section is a titled section whose body is either a Title or a Paragraph.
type Section struct {
	Heading string
	Title   *Title
	Para    *Paragraph
}

// Title is a large heading line. With Greeting set, the text before the
// first comma is replaced by the session greeting.
type Title struct {
	Text     string
	Greeting bool
}

// Paragraph is running text of up to three segments. CompactLines, when
// present, replaces the segments on compact layouts with fixed lines.
type Paragraph struct {
	Segments     []string
	CompactLines []string
}

// ListItem is a linked list entry such as "03. StreamFlow".
type ListItem struct {
	Text string
	Href string
}

// Image is a fixed-size picture; it is only ever a whole block.
type Image struct {
	Src           string
	Alt           string
	Width, Height float64
}

func (Section) isBlock()  {}
func (ListItem) isBlock() {}
func (Image) isBlock()    {}

// Unit is one atomic renderable: a character or a whole block.
type Unit struct {
	Char  rune
	Style Style
	Href  string
	Block Block // set for whole-block units

	// Group numbers the line group the unit belongs to. A new group always
	// starts on a new line.
	Group int
}

// Newline is the layout-only line break marker.
const Newline = '\n'

// Renderable reports whether the unit is drawn. Line-break markers only
// take part in layout.
func (u Unit) Renderable() bool {
	return u.Block != nil || u.Char != Newline
}

// Options control deconstruction.
type Options struct {
	Greeting    string // replaces the leading word of greeting titles
	Compact     bool
	ListHeading string // inserted once before the first list entry
}

// DefaultListHeading is the heading inserted before the first list entry.
const DefaultListHeading = "Projects"

var numbered = regexp.MustCompile(`^(\d+\.\s)(.+)$`)

// Deconstruct flattens content into character units in reading order.
// Images are not deconstructed.
func Deconstruct(content []Block, opts Options) []Unit {
	d := deconstructor{opts: opts}
	listHeading := opts.ListHeading
	if listHeading == "" {
		listHeading = DefaultListHeading
	}
	sawList := false

	for _, block := range content {
		switch b := block.(type) {
		case Section:
			d.section(b)
		case ListItem:
			if !sawList {
				sawList = true
				d.next()
				d.text(listHeading, StyleSectionHeading, "")
			}
			d.listItem(b)
		}
	}
	return d.units
}

// DeconstructBlocks keeps every block whole, one unit per block.
func DeconstructBlocks(content []Block) []Unit {
	units := make([]Unit, 0, len(content))
	for i, block := range content {
		units = append(units, Unit{Style: StyleBlock, Block: block, Group: i})
	}
	return units
}

// deconstructOne flattens a single block without the list heading.
func deconstructOne(block Block, opts Options) []Unit {
	d := deconstructor{opts: opts}
	switch b := block.(type) {
	case Section:
		d.section(b)
	case ListItem:
		d.listItem(b)
	}
	return d.units
}

type deconstructor struct {
	opts  Options
	units []Unit
	group int
}

func (d *deconstructor) next() {
	if len(d.units) > 0 {
		d.group++
	}
}

func (d *deconstructor) text(s string, style Style, href string) {
	for _, r := range s {
		d.units = append(d.units, Unit{Char: r, Style: style, Href: href, Group: d.group})
	}
}

func (d *deconstructor) section(s Section) {
	if strings.TrimSpace(s.Heading) != "" {
		d.next()
		d.text(s.Heading, StyleSectionHeading, "")
	}

	switch {
	case s.Title != nil:
		d.next()
		d.title(*s.Title)
	case s.Para != nil:
		d.next()
		d.paragraph(*s.Para)
	}
}

func (d *deconstructor) title(t Title) {
	if t.Greeting && d.opts.Greeting != "" {
		if i := strings.Index(t.Text, ","); i >= 0 {
			d.text(d.opts.Greeting, StyleGreeting, "")
			d.text(t.Text[i:], StyleHeading, "")
			return
		}
	}
	d.text(t.Text, StyleHeading, "")
}

func (d *deconstructor) paragraph(p Paragraph) {
	if d.opts.Compact && len(p.CompactLines) > 0 {
		for i, line := range p.CompactLines {
			if i > 0 {
				d.units = append(d.units, Unit{Char: Newline, Style: StyleParagraph, Group: d.group})
			}
			d.text(line, StyleParagraph, "")
		}
		return
	}
	for _, seg := range p.Segments {
		d.text(seg, StyleParagraph, "")
	}
}

func (d *deconstructor) listItem(item ListItem) {
	d.next()
	if m := numbered.FindStringSubmatch(item.Text); m != nil {
		d.text(m[1], StyleNumber, item.Href)
		d.text(m[2], StyleLink, item.Href)
		return
	}
	d.text(item.Text, StyleLink, item.Href)
}

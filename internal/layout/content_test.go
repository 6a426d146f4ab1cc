package layout

import (
	"math/rand"
	"strings"
	"testing"
)

func collect(units []Unit, style Style) string {
	var sb strings.Builder
	for _, u := range units {
		if u.Style == style {
			sb.WriteRune(u.Char)
		}
	}
	return sb.String()
}

// TestDeconstructStyles verifies each block kind maps to its style tags
func TestDeconstructStyles(t *testing.T) {
	units := Deconstruct(HomeContent(), Options{Greeting: "Hola"})

	tests := []struct {
		style Style
		want  string
	}{
		{StyleGreeting, "Hola"},
		{StyleHeading, ", I am Jesse Herrera"},
		{StyleSectionHeading, "About" + DefaultListHeading},
		{StyleNumber, "00. 01. 02. 03. 04. 05. "},
	}

	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			if got := collect(units, tt.style); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	if got := collect(units, StyleLink); !strings.HasPrefix(got, "AWS CloudSharing Project") {
		t.Errorf("Expected link text to start with the first project, got %q", got)
	}
	for _, u := range units {
		if u.Style == StyleNumber && u.Href != "" && !strings.HasPrefix(u.Href, "https://") {
			t.Errorf("Unexpected href %q", u.Href)
		}
	}
}

// TestDeconstructListHeadingOnce verifies the list heading appears once
func TestDeconstructListHeadingOnce(t *testing.T) {
	content := []Block{ListItem{Text: "a"}, ListItem{Text: "b"}}
	units := Deconstruct(content, Options{ListHeading: "Projs"})

	if got := collect(units, StyleSectionHeading); got != "Projs" {
		t.Errorf("Expected single heading, got %q", got)
	}
	if got := collect(units, StyleLink); got != "ab" {
		t.Errorf("Expected unnumbered items as links, got %q", got)
	}
}

// TestDeconstructCompactParagraph verifies compact lines and newline markers
func TestDeconstructCompactParagraph(t *testing.T) {
	content := []Block{Section{Para: &Paragraph{
		Segments:     []string{"wide text"},
		CompactLines: []string{"one", "two", "three"},
	}}}

	wide := Deconstruct(content, Options{})
	if got := collect(wide, StyleParagraph); got != "wide text" {
		t.Errorf("Expected segments on wide layout, got %q", got)
	}

	compact := Deconstruct(content, Options{Compact: true})
	if got := collect(compact, StyleParagraph); got != "one\ntwo\nthree" {
		t.Errorf("Expected compact lines, got %q", got)
	}

	hidden := 0
	for _, u := range compact {
		if !u.Renderable() {
			hidden++
		}
	}
	if hidden != 2 {
		t.Errorf("Expected 2 non-renderable newline markers, got %d", hidden)
	}
}

// TestDeconstructGroups verifies line groups start at block boundaries
func TestDeconstructGroups(t *testing.T) {
	units := Deconstruct(HomeContent(), Options{Greeting: "Hi"})

	groups := map[int]bool{}
	for i, u := range units {
		groups[u.Group] = true
		if i > 0 && u.Group < units[i-1].Group {
			t.Fatalf("Groups must be non-decreasing at %d", i)
		}
	}
	// title, About heading, paragraph, list heading, six items
	if len(groups) != 10 {
		t.Errorf("Expected 10 line groups, got %d", len(groups))
	}
}

// TestDeconstructBlocks verifies whole-block units keep images
func TestDeconstructBlocks(t *testing.T) {
	content := append(HomeContent(), Image{Src: "/imgs/me.jpeg", Width: 300, Height: 200})
	units := DeconstructBlocks(content)

	if len(units) != len(content) {
		t.Fatalf("Expected %d units, got %d", len(content), len(units))
	}
	if _, ok := units[len(units)-1].Block.(Image); !ok {
		t.Error("Expected last unit to carry the image")
	}
	for _, u := range units {
		if !u.Renderable() {
			t.Error("Block units are always renderable")
		}
	}
}

// TestRandomGreeting verifies greetings come from the list
func TestRandomGreeting(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		g := RandomGreeting(rng)
		found := false
		for _, want := range Greetings {
			if g == strings.Join(strings.Fields(want), " ") {
				found = true
			}
		}
		if !found {
			t.Fatalf("Unexpected greeting %q", g)
		}
	}
}

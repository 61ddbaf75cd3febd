// Package gcode turns G-code text into a toolpath of straight moves.
//
// Only G0/G1 are interpreted. Everything else, including arcs, homing and
// M codes, is skipped. Axis words are modal: an axis missing from a line
// keeps its previous value.
package gcode

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ThatOtherAndrew/Layerview/internal/models"
)

// Parse returns the moves described by text in file order.
func Parse(text string) []models.Move {
	return Load(text).Moves
}

// Load parses text into a toolpath with statistics.
func Load(text string) *models.Toolpath {
	p := newParser()
	for line := range strings.Lines(text) {
		p.line(line)
	}
	return p.toolpath()
}

// ParseReader is Load over a stream. Only read errors are returned; bad
// G-code never fails.
func ParseReader(r io.Reader) (*models.Toolpath, error) {
	p := newParser()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.toolpath(), nil
}

type parser struct {
	pos       models.Position
	moves     []models.Move
	layers    map[float64]struct{}
	malformed int
	lines     int
}

func newParser() *parser {
	return &parser{layers: make(map[float64]struct{})}
}

func (p *parser) line(raw string) {
	p.lines++

	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = raw[:i]
	}
	line := strings.TrimSpace(raw)
	if line == "" || !isMotion(line) {
		return
	}

	next := p.pos
	extruding := false
	for _, axis := range [...]byte{'X', 'Y', 'Z', 'E'} {
		v, found, ok := param(line, axis)
		if !found {
			continue
		}
		if !ok {
			p.malformed++
			continue
		}
		switch axis {
		case 'X':
			next.X = v
		case 'Y':
			next.Y = v
		case 'Z':
			next.Z = v
		case 'E':
			extruding = v > p.pos.E
			next.E = v
		}
	}

	if !next.SamePlace(p.pos) {
		p.moves = append(p.moves, models.Move{From: p.pos, To: next, IsExtrusion: extruding})
		p.layers[p.pos.Z] = struct{}{}
	}
	p.pos = next
}

func (p *parser) toolpath() *models.Toolpath {
	tp := &models.Toolpath{
		Moves:     p.moves,
		Malformed: p.malformed,
		Lines:     p.lines,
	}
	for _, m := range p.moves {
		if m.IsExtrusion {
			tp.Extrusions++
		}
	}
	tp.Layers = make([]float64, 0, len(p.layers))
	for z := range p.layers {
		tp.Layers = append(tp.Layers, z)
	}
	sort.Float64s(tp.Layers)
	return tp
}

// isMotion matches a leading G0, G1, G00 or G01 word. The command letter is
// upper case by convention. G10 to G19 are not motion: "G10 L2 X5" sets a
// work offset and must not draw a segment to X5.
func isMotion(line string) bool {
	if line[0] != 'G' {
		return false
	}
	j := 1
	for j < len(line) && isDigit(line[j]) {
		j++
	}
	if j < len(line) && line[j] == '.' {
		return false
	}
	switch line[1:j] {
	case "0", "1", "00", "01":
		return true
	}
	return false
}

// param finds the first occurrence of letter (either case) after the command
// word that is followed by a number. found reports whether such a word
// exists; ok reports whether its number parsed.
func param(line string, letter byte) (v float64, found, ok bool) {
	lower := letter + 'a' - 'A'
	for i := 1; i < len(line); i++ {
		c := line[i]
		if c != letter && c != lower {
			continue
		}
		j := i + 1
		for j < len(line) && isNumberByte(line[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		v, err := strconv.ParseFloat(line[i+1:j], 64)
		if err != nil {
			return 0, true, false
		}
		return v, true, true
	}
	return 0, false, false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '.' || c == '-' || c == '+'
}

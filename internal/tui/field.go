package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/megancady/Space-Defense-Pilot/internal/game"
)

type tone int

const (
	toneSpace tone = iota
	toneStar
	toneCore
	toneLaser
	toneShip
	toneBlast
	toneCrash
)

type cell struct {
	ch   rune
	tone tone
}

var (
	starStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3C4A66"))
	laserStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	shipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	blastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB703"))
	crashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	hudStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// glyph returns r when it occupies exactly one terminal cell, otherwise the
// ASCII fallback, so the grid never drifts.
func glyph(r, fallback rune) rune {
	if runewidth.RuneWidth(r) == 1 {
		return r
	}
	return fallback
}

var (
	coreGlyph  = glyph('█', '#')
	shipGlyph  = glyph('◆', 'V')
	laserGlyph = glyph('•', '*')
	starGlyph  = glyph('·', '.')
	blastGlyph = glyph('✶', '*')
)

// fieldView maps the simulated field onto a block of terminal cells. Cells
// are roughly twice as tall as wide, so a square field uses twice as many
// columns as rows.
type fieldView struct {
	params game.Params
	left   int
	top    int
	cols   int
	rows   int
}

// minFieldRows is the smallest grid that still shows the core as a disc.
const minFieldRows = 12

// layoutField centres the largest square field that fits in width x height
// starting at screen row top.
func layoutField(params game.Params, width, height, top int) (fieldView, bool) {
	rows := height
	if width/2 < rows {
		rows = width / 2
	}
	if rows < minFieldRows {
		return fieldView{}, false
	}
	cols := rows * 2
	return fieldView{
		params: params,
		left:   (width - cols) / 2,
		top:    top + (height-rows)/2,
		cols:   cols,
		rows:   rows,
	}, true
}

// toField converts a screen cell to field coordinates at the cell centre.
// ok is false when the cell lies outside the field.
func (f fieldView) toField(x, y int) (game.Vec, bool) {
	c := x - f.left
	r := y - f.top
	if c < 0 || r < 0 || c >= f.cols || r >= f.rows {
		return game.Vec{}, false
	}
	return game.Vec{
		X: (float64(c) + 0.5) * f.params.FieldWidth / float64(f.cols),
		Y: (float64(r) + 0.5) * f.params.FieldHeight / float64(f.rows),
	}, true
}

// toCell converts field coordinates to a grid cell relative to the field.
func (f fieldView) toCell(v game.Vec) (int, int, bool) {
	c := int(math.Floor(v.X * float64(f.cols) / f.params.FieldWidth))
	r := int(math.Floor(v.Y * float64(f.rows) / f.params.FieldHeight))
	if c < 0 || r < 0 || c >= f.cols || r >= f.rows {
		return 0, 0, false
	}
	return c, r, true
}

// render draws the snapshot with the core in coreColor.
func (f fieldView) render(snap game.Snapshot, coreColor string) string {
	grid := make([][]cell, f.rows)
	for r := range grid {
		grid[r] = make([]cell, f.cols)
		for c := range grid[r] {
			grid[r][c] = cell{ch: ' ', tone: toneSpace}
			if isStar(c, r) {
				grid[r][c] = cell{ch: starGlyph, tone: toneStar}
			}
		}
	}

	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			center, _ := f.toField(f.left+c, f.top+r)
			if f.params.OnCore(center) {
				grid[r][c] = cell{ch: coreGlyph, tone: toneCore}
			}
		}
	}

	if snap.Laser != nil {
		f.line(grid, snap.Laser.From, snap.LaserTip, cell{ch: laserGlyph, tone: toneLaser})
	}

	if ship := snap.Ship; ship != nil {
		if ship.State == game.Exploding {
			t := toneBlast
			if ship.Crashed {
				t = toneCrash
			}
			f.ring(grid, ship.Pos, 8+40*snap.ExplosionFrac, cell{ch: blastGlyph, tone: t})
		} else {
			f.plot(grid, ship.Pos, cell{ch: shipGlyph, tone: toneShip})
		}
	}

	coreStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(coreColor))
	lines := make([]string, f.rows)
	for r, row := range grid {
		lines[r] = renderCells(row, coreStyle)
	}
	return strings.Join(lines, "\n")
}

func (f fieldView) plot(grid [][]cell, v game.Vec, c cell) {
	col, row, ok := f.toCell(v)
	if !ok {
		return
	}
	grid[row][col] = c
}

func (f fieldView) line(grid [][]cell, from, to game.Vec, c cell) {
	steps := int(from.Dist(to)/4) + 1
	for i := 0; i <= steps; i++ {
		f.plot(grid, from.Lerp(to, float64(i)/float64(steps)), c)
	}
}

func (f fieldView) ring(grid [][]cell, center game.Vec, radius float64, c cell) {
	const points = 24
	for i := 0; i < points; i++ {
		a := 2 * math.Pi * float64(i) / points
		f.plot(grid, center.Add(game.Vec{X: math.Cos(a) * radius, Y: math.Sin(a) * radius}), c)
	}
	f.plot(grid, center, c)
}

// isStar scatters a fixed sparse starfield.
func isStar(c, r int) bool {
	h := uint32(c)*73856093 ^ uint32(r)*19349663
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return h%29 == 0
}

func styleFor(t tone, core lipgloss.Style) (lipgloss.Style, bool) {
	switch t {
	case toneStar:
		return starStyle, true
	case toneCore:
		return core, true
	case toneLaser:
		return laserStyle, true
	case toneShip:
		return shipStyle, true
	case toneBlast:
		return blastStyle, true
	case toneCrash:
		return crashStyle, true
	default:
		return lipgloss.Style{}, false
	}
}

// renderCells styles runs of equal tone together to keep escape output small.
func renderCells(row []cell, core lipgloss.Style) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].tone == row[i].tone {
			run.WriteRune(row[j].ch)
			j++
		}
		if style, ok := styleFor(row[i].tone, core); ok {
			b.WriteString(style.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		i = j
	}
	return b.String()
}

// fitWidth pads or truncates s to exactly width cells.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "…")
	return runewidth.FillRight(s, width)
}

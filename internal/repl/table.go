package repl

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	columnGap     = "  "
	maxCellWidth  = 32
	truncatedTail = "…"
)

// table 按显示宽度对齐的纯文本表格，中日韩等宽字符按两列计算
type table struct {
	header []string
	rows   [][]string
	right  map[int]bool // 右对齐的列
}

func newTable(header ...string) *table {
	return &table{header: header, right: map[int]bool{}}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) add(cells ...string) {
	row := make([]string, len(t.header))
	for i := range row {
		if i < len(cells) {
			row[i] = runewidth.Truncate(cells[i], maxCellWidth, truncatedTail)
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table) render(w io.Writer) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	t.writeRow(&b, t.header, widths)
	for _, row := range t.rows {
		t.writeRow(&b, row, widths)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *table) writeRow(b *strings.Builder, row []string, widths []int) {
	cells := make([]string, len(row))
	for i, cell := range row {
		if t.right[i] {
			cells[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	b.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " "))
	b.WriteByte('\n')
}

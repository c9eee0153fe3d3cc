// Package repl 实现库存控制台的交互式命令行前端：解析命令、驱动控制器、渲染视图。
package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Input 解析后的一行命令
type Input struct {
	Cmd  string   // 小写命令名
	Args []string // 按空白切分的参数
	Rest string   // 命令名之后的原始文本（去除首尾空白）
}

// Parse 解析一行输入，空行返回 false
func Parse(line string) (Input, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Input{}, false
	}

	fields := strings.Fields(line)
	in := Input{
		Cmd:  strings.ToLower(fields[0]),
		Args: fields[1:],
	}
	in.Rest = strings.TrimSpace(line[len(fields[0]):])
	return in, true
}

// Arg 返回第 i 个参数，不存在时返回空字符串
func (in Input) Arg(i int) string {
	if i < 0 || i >= len(in.Args) {
		return ""
	}
	return in.Args[i]
}

// parseRow 解析 1 起始的行号
func parseRow(s string, rows int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: row must be a number, got %q", ErrUsage, s)
	}
	if n < 1 || n > rows {
		return 0, fmt.Errorf("%w: row %d out of range (1-%d)", ErrUsage, n, rows)
	}
	return n - 1, nil
}

// splitList 解析逗号分隔的列表，忽略空项
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// isYes 判断确认输入
func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

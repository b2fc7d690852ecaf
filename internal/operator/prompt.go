// Package operator collects operator-entered override messages
package operator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// TerminalPrompt asks for one line of input on a terminal with a bounded wait
type TerminalPrompt struct {
	in    io.Reader
	out   io.Writer
	lines chan string
	once  sync.Once
}

// NewTerminalPrompt creates a prompt reading from in and writing prompts to out
func NewTerminalPrompt(in io.Reader, out io.Writer) *TerminalPrompt {
	return &TerminalPrompt{
		in:    in,
		out:   out,
		lines: make(chan string),
	}
}

// startReader reads lines in the background. A line typed after a timeout is kept for the next prompt.
func (p *TerminalPrompt) startReader() {
	p.once.Do(func() {
		go func() {
			defer close(p.lines)
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				p.lines <- scanner.Text()
			}
		}()
	})
}

// AwaitMessage prompts and returns the trimmed line. ok is false on timeout or empty input.
func (p *TerminalPrompt) AwaitMessage(ctx context.Context, timeout time.Duration) (string, bool, error) {
	p.startReader()

	fmt.Fprintf(p.out, "✉️ %s待機中。メッセージがあれば入力してください（Enterでスキップ）：\n", formatWait(timeout))
	fmt.Fprint(p.out, "👉 入力 > ")

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", false, ctx.Err()
	case <-timer.C:
		fmt.Fprintln(p.out, "\n⌛ タイムアウト。スキップします。")
		return "", false, nil
	case line, open := <-p.lines:
		if !open {
			return "", false, io.EOF
		}
		text := strings.TrimSpace(line)
		if text == "" {
			fmt.Fprintln(p.out, "📤 メッセージなし。")
			return "", false, nil
		}
		return text, true, nil
	}
}

func formatWait(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d分", int(d/time.Minute))
	}
	return fmt.Sprintf("%d秒", int(d/time.Second))
}

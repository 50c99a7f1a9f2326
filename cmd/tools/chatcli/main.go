package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/summachat/backend/internal/config"
	"github.com/zhouzirui/summachat/backend/internal/logging"
	chatmodel "github.com/zhouzirui/summachat/backend/internal/model/chat"
	"github.com/zhouzirui/summachat/backend/internal/service/chat"
	"github.com/zhouzirui/summachat/backend/internal/service/summarizer"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A8DEE")).
			PaddingLeft(1)
	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BB9CD5")).
			PaddingLeft(1)
	statusStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")).Bold(true)
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	logging.Init(cfg.Log)

	text := flag.String("text", "", "一次性摘要的文本，留空则进入交互模式")
	timeout := flag.Duration("timeout", cfg.Gateway.Timeout, "单次摘要的超时时间 (0 表示不限制)")
	flag.Parse()

	ctx := context.Background()
	gateway := summarizer.Lazy(func() (summarizer.Summarizer, error) {
		return summarizer.New(ctx, cfg.Gateway)
	})
	svc := chat.NewService(gateway, chat.Config{Params: cfg.Generation, Timeout: *timeout})

	messages := paragraphs(os.Stdin)
	if strings.TrimSpace(*text) != "" {
		messages = single(*text)
	} else {
		fmt.Fprintln(os.Stderr, statusStyle.Render("Paste your text, then press Enter on an empty line to summarize."))
	}

	if err := run(ctx, svc, messages, os.Stdout); err != nil {
		log.Fatalf("chat failed: %v", err)
	}
}

// source feeds messages to emit until the input is exhausted.
type source func(emit func(string) error) error

// single yields text as one message, newlines included.
func single(text string) source {
	return func(emit func(string) error) error {
		return emit(text)
	}
}

// paragraphs yields one message per block of consecutive non-blank lines, so
// a pasted multi-line paragraph is summarized as a whole. A blank line or the
// end of input closes the block.
func paragraphs(in io.Reader) source {
	return func(emit func(string) error) error {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var block []string
		flush := func() error {
			if len(block) == 0 {
				return nil
			}
			msg := strings.Join(block, "\n")
			block = block[:0]
			return emit(msg)
		}

		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				if err := flush(); err != nil {
					return err
				}
				continue
			}
			block = append(block, line)
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		return flush()
	}
}

// run drives one session: every message from messages is submitted and the
// resulting turns are printed to out.
func run(ctx context.Context, svc *chat.Service, messages source, out io.Writer) error {
	session, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}
	defer svc.EndSession(ctx, session.ID)

	for _, turn := range session.Transcript {
		printTurn(out, turn)
	}

	return messages(func(text string) error {
		start := time.Now()
		_, err := svc.Submit(ctx, session.ID, text, func(ev chat.Event) {
			switch ev.Kind {
			case chat.EventUser, chat.EventAssistant:
				printTurn(out, *ev.Turn)
			case chat.EventProcessing:
				fmt.Fprintln(out, statusStyle.Render("Summarizing your text... ⏳"))
			}
		})

		switch {
		case err == nil:
			log.Debugf("summary took %s", time.Since(start).Round(time.Millisecond))
		case errors.Is(err, chat.ErrEmptyInput):
		case errors.Is(err, chat.ErrGatewayFailure):
			fmt.Fprintln(out, errorStyle.Render("Summarization failed: "+err.Error()))
		default:
			return err
		}
		return nil
	})
}

func printTurn(out io.Writer, turn chatmodel.Turn) {
	style := assistantStyle
	if turn.Role == chatmodel.RoleUser {
		style = userStyle
	}
	fmt.Fprintln(out, style.Render(turn.Role.Label()+": "+turn.Content))
	fmt.Fprintln(out)
}

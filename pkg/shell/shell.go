// Package shell provides the interactive REPL for the kernel.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/help"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/render"
)

const prompt = "\033[32mholo>\033[0m "

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = fmt.Errorf("quit")

// Shell is the interactive command-line interface.
type Shell struct {
	host      *host.Host
	rl        *readline.Instance
	out       io.Writer
	errs      *errors.Formatter
	prompter  Prompter
	panel     *render.Panel
	exportDir string
	version   string
}

// Config holds shell configuration.
type Config struct {
	HistoryFile string
	ExportDir   string
	Version     string

	// Stdout receives command output. Defaults to os.Stdout.
	Stdout io.Writer

	// Prompter asks before destructive commands. Defaults to prompting on
	// the shell's own line editor.
	Prompter Prompter
}

// New creates an interactive shell over h.
func New(h *host.Host, cfg Config) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    NewShellCompleter(h),
	})
	if err != nil {
		return nil, err
	}
	if cfg.Stdout == nil {
		cfg.Stdout = rl.Stdout()
	}
	if cfg.Prompter == nil {
		cfg.Prompter = &readlinePrompter{rl: rl}
	}
	s := NewWithIO(h, cfg)
	s.rl = rl
	s.errs = errors.DefaultFormatter()
	return s, nil
}

// NewWithIO creates a shell without a line editor. Commands are fed with
// Execute; errors are written uncoloured to Stdout.
func NewWithIO(h *host.Host, cfg Config) *Shell {
	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}
	prompter := cfg.Prompter
	if prompter == nil {
		prompter = NewInteractivePrompter()
	}
	return &Shell{
		host:      h,
		out:       out,
		errs:      &errors.Formatter{Writer: out, Indent: "  "},
		prompter:  prompter,
		panel:     render.NewPanel(out),
		exportDir: cfg.ExportDir,
		version:   cfg.Version,
	}
}

// Run starts the interactive loop. It returns nil on /quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	if s.rl == nil {
		return fmt.Errorf("shell has no line editor")
	}
	defer s.rl.Close()

	help.NewRenderer(s.out).RenderBanner(s.version)
	fmt.Fprintln(s.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := s.Execute(ctx, line); err != nil {
			if err == ErrQuit {
				return nil
			}
			s.errs.Display(err)
		}
	}
}

// Execute runs one command line. Blank lines are ignored.
func (s *Shell) Execute(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, args := parts[0], parts[1:]
	if !strings.HasPrefix(cmd, "/") {
		return errors.CommandNotFound(cmd).
			WithSuggestion("Commands start with '/'. Type /help to list them.")
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		return ErrQuit
	case "/help", "/h":
		return s.handleHelp(args)
	case "/tick", "/t":
		return s.handleTick(args)
	case "/update", "/u":
		return s.handleUpdate(args)
	case "/run":
		return s.handleRun(ctx, args)
	case "/snapshot", "/s":
		return s.panel.Render(s.host.Snapshot())
	case "/entity", "/e":
		return s.handleEntity(args)
	case "/memory", "/m":
		return s.handleMemory()
	case "/recall":
		return s.handleRecall(args)
	case "/assign":
		return s.handleAssign(args)
	case "/vocab":
		return s.handleVocab(args)
	case "/activate", "/a":
		return s.handleActivate(args)
	case "/spawn":
		return s.handleSpawn(args)
	case "/reset":
		return s.handleReset()
	case "/export":
		return s.handleExport(args)
	case "/digest":
		return s.handleDigest()
	default:
		return errors.CommandNotFound(cmd).WithSuggestion("Type /help to list commands.")
	}
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

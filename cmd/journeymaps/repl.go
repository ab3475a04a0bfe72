package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"

	"github.com/sephiram591/journeymaps/internal/journey"
	"github.com/sephiram591/journeymaps/internal/jpath"
)

// runREPL starts an interactive shell over j, grounded on
// ui.Chat.Run's readline setup (prompt string, history file, EOF/interrupt
// handling) with the chat-specific intent parsing and LLM calls stripped
// out in favor of a small fixed command set: list paths, run <path>, show
// cache <path>.
func runREPL(j *journey.Journey, opts jpath.PathOptions) error {
	if err := os.MkdirAll(".journeymaps", 0o755); err != nil {
		return fmt.Errorf("create .journeymaps dir: %w", err)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mjourneymaps>\033[0m ",
		HistoryFile:     ".journeymaps/history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("JourneyMAPS v%s — %d path(s) registered. Type \"help\" for commands.\n", version, len(j.PathNames()))

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := dispatch(j, opts, line); err != nil {
			if err == errQuit {
				return nil
			}
			fmt.Printf("\033[31mError: %v\033[0m\n", err)
		}
	}
}

func dispatch(j *journey.Journey, opts jpath.PathOptions, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "help":
		fmt.Println("commands: list paths | run <path> | show cache <path> | describe | exit")
	case "exit", "quit":
		return errQuit
	case "describe":
		fmt.Print(j.Describe())
	case "list":
		if len(fields) >= 2 && fields[1] == "paths" {
			for _, name := range j.PathNames() {
				p, _ := j.Path(name)
				fmt.Printf("  %-20s subpaths=%v save_datetime=%v\n", name, p.Subpaths(), p.SaveDatetime())
			}
			return nil
		}
		return fmt.Errorf("usage: list paths")
	case "run":
		if len(fields) < 2 {
			return fmt.Errorf("usage: run <path>")
		}
		return replRun(j, opts, fields[1])
	case "show":
		if len(fields) >= 3 && fields[1] == "cache" {
			return replShowCache(j, fields[2])
		}
		return fmt.Errorf("usage: show cache <path>")
	default:
		return fmt.Errorf("unknown command %q (try \"help\")", fields[0])
	}
	return nil
}

var errQuit = errors.New("quit")

func replRun(j *journey.Journey, opts jpath.PathOptions, name string) error {
	result, err := j.Run(context.Background(), name, opts)
	if err != nil {
		return err
	}
	for _, key := range sortedResultKeys(result) {
		fmt.Printf("  %s = %v\n", key, result.SQL[key])
	}
	return nil
}

func replShowCache(j *journey.Journey, name string) error {
	if _, ok := j.Path(name); !ok {
		return fmt.Errorf("unknown path %q", name)
	}
	rows, err := j.Store().ListResults(context.Background(), name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("  (no cached results)")
		return nil
	}
	for _, row := range rows {
		when := "idempotent"
		if row.CreatedAt != nil {
			when = humanize.Time(time.Unix(*row.CreatedAt, 0))
		}
		sql := "-"
		if row.SQL != nil {
			sql = *row.SQL
		}
		fmt.Printf("  [v%s] %s env=%s sql=%s\n", strconv.Itoa(row.PathVersion), when, row.Environment, sql)
	}
	return nil
}

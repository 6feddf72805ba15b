/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// krishimitra-ctl talks to the speaker daemon. With arguments it sends them
// as one command and prints the reply; without, it opens a prompt.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"krishimitra/internal/config"
	"krishimitra/pkg/format"
)

var verbs = []string{"ABOUT", "PING", "STATUS", "PLAY", "MUTE", "WATCH", "VOL", "QUIT"}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "krishimitra-ctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, err := net.Dial("unix", cfg.Audio.Socket)
	if err != nil {
		return fmt.Errorf("speaker daemon not reachable at %s: %w", cfg.Audio.Socket, err)
	}
	defer conn.Close()

	if len(args) > 0 {
		return oneShot(conn, strings.Join(args, " "), os.Stdout)
	}
	return interactive(conn, filepath.Join(cfg.Dir, "ctl_history"))
}

// oneShot sends line and prints the reply. WATCH keeps printing events until
// the daemon goes away.
func oneShot(conn io.ReadWriter, line string, out io.Writer) error {
	if _, err := fmt.Fprintln(conn, line); err != nil {
		return err
	}
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 64*1024), 16<<20)
	watching := strings.EqualFold(strings.Fields(line)[0], "WATCH")
	for sc.Scan() {
		fmt.Fprintln(out, sc.Text())
		if !watching {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if !watching {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func interactive(conn net.Conn, history string) error {
	items := make([]readline.PrefixCompleterInterface, 0, len(verbs))
	for _, v := range verbs {
		items = append(items, readline.PcItem(v))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "krishi> ",
		HistoryFile:     history,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "QUIT",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s Ctl V.%d.%d\n", format.AppName, format.VersionMajor, format.VersionMinor)
	fmt.Fprintln(rl.Stdout(), `Type a command, TAB completes, "QUIT" exits`)

	// socket -> terminal; readline redraws the prompt around each line
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		sc := bufio.NewScanner(conn)
		sc.Buffer(make([]byte, 64*1024), 16<<20)
		for sc.Scan() {
			fmt.Fprintln(rl.Stdout(), "RECV:", sc.Text())
		}
		fmt.Fprintln(rl.Stdout(), "SOCKET CLOSED")
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			fmt.Fprintln(rl.Stdout(), "Bye.")
			break
		}
		if _, err := fmt.Fprintln(conn, line); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	conn.Close()
	<-closed
	return nil
}

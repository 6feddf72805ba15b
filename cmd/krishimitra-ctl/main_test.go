/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// daemon answers each line from replies and then closes.
func daemon(t *testing.T, conn net.Conn, replies ...string) <-chan string {
	t.Helper()
	got := make(chan string, 1)
	go func() {
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		got <- line
		for _, r := range replies {
			if _, err := io.WriteString(conn, r+"\n"); err != nil {
				return
			}
		}
	}()
	return got
}

func TestOneShot(t *testing.T) {
	srv, cli := net.Pipe()
	got := daemon(t, srv, "Pong", "extra")

	var out bytes.Buffer
	require.NoError(t, oneShot(cli, "PING", &out))
	require.Equal(t, "PING\n", <-got)
	require.Equal(t, "Pong\n", out.String())
	cli.Close()
}

func TestOneShotWatchUntilClose(t *testing.T) {
	srv, cli := net.Pipe()
	daemon(t, srv, "OK", `EVENT {"type":"STATUS"}`)

	var out bytes.Buffer
	require.NoError(t, oneShot(cli, "watch", &out))
	require.Equal(t, "OK\nEVENT {\"type\":\"STATUS\"}\n", out.String())
}

func TestOneShotNoReply(t *testing.T) {
	srv, cli := net.Pipe()
	daemon(t, srv)

	require.ErrorIs(t, oneShot(cli, "STATUS", io.Discard), io.ErrUnexpectedEOF)
}

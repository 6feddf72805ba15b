/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"krishimitra/pkg/playback"
)

// Player is the coordinator surface the daemon exposes.
type Player interface {
	RequestPlayPause(locator string)
	DisableAndStop()
	Status() playback.Status
	Subscribe() <-chan playback.Status
	Unsubscribe(ch <-chan playback.Status)
}

// VolumeControl adjusts output gain. Nil when no device is open.
type VolumeControl interface {
	SetVolume(db float64)
	Volume() float64
}

type server struct {
	player Player
	volume VolumeControl
	log    zerolog.Logger
}

// ===============================
// IPC Server
// ===============================

// listen replaces any stale socket file and starts listening on path.
func listen(path string) (net.Listener, error) {
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// serve accepts connections until ctx is cancelled.
func (s *server) serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept")
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, c)
		}()
	}
}

func (s *server) handleConn(ctx context.Context, c net.Conn) {
	cl := &client{conn: c, done: make(chan struct{})}
	defer cl.close(s)

	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-cl.done:
		}
	}()

	sc := bufio.NewScanner(c)
	sc.Buffer(make([]byte, 64*1024), 16<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := cl.send(s.exec(cl, line)); err != nil {
			return
		}
	}
}

// ===============================
// Client
// ===============================

// client is one connection. WATCH events and replies share the socket, so
// every write goes through send.
type client struct {
	conn net.Conn

	writeMu sync.Mutex

	once     sync.Once
	done     chan struct{}
	watching bool
	sub      <-chan playback.Status
}

func (cl *client) send(line string) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	_, err := cl.conn.Write([]byte(line + "\n"))
	return err
}

// watch streams an EVENT line for every coordinator transition until the
// connection closes. Repeated calls are no-ops.
func (cl *client) watch(s *server) {
	if cl.watching {
		return
	}
	cl.watching = true
	cl.sub = s.player.Subscribe()
	prev := s.player.Status()

	go func() {
		for {
			select {
			case <-cl.done:
				return
			case st := <-cl.sub:
				if err := cl.emit(s, eventType(prev, st), st); err != nil {
					return
				}
				prev = st
			}
		}
	}()
}

func (cl *client) emit(s *server, kind string, st playback.Status) error {
	r := newStatusReply(st, s.volumeDB())
	r.Type = kind
	return cl.send("EVENT " + statusLine(r))
}

func (cl *client) close(s *server) {
	cl.once.Do(func() {
		close(cl.done)
		if cl.sub != nil {
			s.player.Unsubscribe(cl.sub)
		}
		cl.conn.Close()
	})
}

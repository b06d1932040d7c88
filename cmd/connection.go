// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Thermoquad/heliograph/pkg/telemetry"
	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"
)

// Receiver delivers payloads from a transport. One payload is one datagram,
// one serial line, one WebSocket message or one captured record.
type Receiver interface {
	// Receive blocks until the next payload arrives
	Receive() (string, error)
	// Source describes where the last payload came from
	Source() string
	Close() error
	String() string
}

// ErrConnectionClosed is returned when reading from a closed connection
var ErrConnectionClosed = errors.New("connection closed")

// ErrReplayFinished is returned once a non-looping replay has delivered
// every record
var ErrReplayFinished = errors.New("replay finished")

// UDPReceiver reads datagrams from a UDP socket
type UDPReceiver struct {
	conn   *net.UDPConn
	buf    []byte
	source string
}

// OpenUDPReceiver listens for datagrams on addr (host:port)
func OpenUDPReceiver(addr string) (*UDPReceiver, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return &UDPReceiver{
		conn: conn,
		buf:  make([]byte, telemetry.ReceiveBufferSize),
	}, nil
}

func (u *UDPReceiver) Receive() (string, error) {
	for {
		n, addr, err := u.conn.ReadFromUDP(u.buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return "", ErrConnectionClosed
			}
			return "", err
		}
		if n == 0 {
			continue
		}
		u.source = addr.String()
		return string(u.buf[:n]), nil
	}
}

func (u *UDPReceiver) Source() string {
	return u.source
}

// Addr returns the bound local address
func (u *UDPReceiver) Addr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UDPReceiver) Close() error {
	return u.conn.Close()
}

func (u *UDPReceiver) String() string {
	return fmt.Sprintf("UDP: %s", u.conn.LocalAddr())
}

// SerialReceiver reads newline terminated lines from a serial port
type SerialReceiver struct {
	port   serial.Port
	reader *bufio.Reader
	name   string
}

// OpenSerialReceiver opens a serial port
func OpenSerialReceiver(portName string, baudRate int) (*SerialReceiver, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialReceiver{
		port:   port,
		reader: bufio.NewReaderSize(port, telemetry.ReceiveBufferSize),
		name:   fmt.Sprintf("%s @ %d baud", portName, baudRate),
	}, nil
}

func (s *SerialReceiver) Receive() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *SerialReceiver) Source() string {
	return s.name
}

func (s *SerialReceiver) Close() error {
	return s.port.Close()
}

func (s *SerialReceiver) String() string {
	return "Serial: " + s.name
}

// WebSocketReceiver reads text or binary messages from a WebSocket
type WebSocketReceiver struct {
	conn   *websocket.Conn
	url    string
	closed bool // Track if connection has failed/closed
}

// OpenWebSocketReceiver opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketReceiver(wsURL, username, password string, skipSSLVerify bool) (*WebSocketReceiver, error) {
	// Parse and validate URL
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	// Build HTTP headers with Basic auth
	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &WebSocketReceiver{conn: conn, url: wsURL}, nil
}

func (w *WebSocketReceiver) Receive() (string, error) {
	if w.closed {
		return "", ErrConnectionClosed
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return "", fmt.Errorf("%w: %v", ErrConnectionClosed, err)
		}

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			return string(data), nil
		}
	}
}

func (w *WebSocketReceiver) Source() string {
	return w.url
}

func (w *WebSocketReceiver) Close() error {
	return w.conn.Close()
}

func (w *WebSocketReceiver) String() string {
	return "WebSocket: " + w.url
}

// ReplayReceiver replays a capture file with its recorded timing
type ReplayReceiver struct {
	path  string
	speed float64 // 0 = as fast as possible
	loop  bool

	file   *os.File
	reader *telemetry.CaptureReader
	prev   time.Duration
	first  bool
	source string
	done   chan struct{}
}

// OpenReplayReceiver opens a capture written with --record
func OpenReplayReceiver(path string, speed float64, loop bool) (*ReplayReceiver, error) {
	r := &ReplayReceiver{
		path:  path,
		speed: speed,
		loop:  loop,
		done:  make(chan struct{}),
	}
	if err := r.rewind(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ReplayReceiver) rewind() error {
	if r.file != nil {
		r.file.Close()
	}
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open capture %s: %w", r.path, err)
	}
	r.file = f
	r.reader = telemetry.NewCaptureReader(f)
	r.first = true
	return nil
}

func (r *ReplayReceiver) Receive() (string, error) {
	for {
		select {
		case <-r.done:
			return "", ErrConnectionClosed
		default:
		}

		rec, err := r.reader.Next()
		if errors.Is(err, io.EOF) {
			if !r.loop {
				return "", ErrReplayFinished
			}
			if err := r.rewind(); err != nil {
				return "", err
			}
			continue
		}
		if err != nil {
			return "", err
		}

		if r.first {
			r.first = false
			r.prev = rec.Offset
		}
		if r.speed > 0 {
			delta := rec.Offset - r.prev
			if delta > 0 {
				select {
				case <-r.done:
					return "", ErrConnectionClosed
				case <-time.After(time.Duration(float64(delta) / r.speed)):
				}
			}
		}
		r.prev = rec.Offset

		r.source = rec.Source
		return rec.Payload, nil
	}
}

func (r *ReplayReceiver) Source() string {
	if r.source == "" {
		return r.path
	}
	return r.source
}

func (r *ReplayReceiver) Close() error {
	select {
	case <-r.done:
		return nil
	default:
		close(r.done)
	}
	return r.file.Close()
}

func (r *ReplayReceiver) String() string {
	return "Replay: " + r.path
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("HELIOGRAPH_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// isStreamReceiver reports whether the configured transport can drop and
// needs reconnecting
func isStreamReceiver() bool {
	return replayFile == "" && (wsURL != "" || portName != "")
}

// wsPassword caches the password so reconnects do not prompt again
var wsPassword string

// OpenReceiver opens the receiver selected by the connection flags:
// replay, then WebSocket, then serial, then UDP
func OpenReceiver() (Receiver, error) {
	if replayFile != "" {
		r, err := OpenReplayReceiver(replayFile, replaySpeed, replayLoop)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	if wsURL != "" {
		if wsUsername != "" && wsPassword == "" {
			password, err := GetPassword()
			if err != nil {
				return nil, err
			}
			wsPassword = password
		}
		r, err := OpenWebSocketReceiver(wsURL, wsUsername, wsPassword, wsNoSSLVerify)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	if portName != "" {
		r, err := OpenSerialReceiver(portName, baudRate)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	r, err := OpenUDPReceiver(listenAddr)
	if err != nil {
		return nil, err
	}
	return r, nil
}

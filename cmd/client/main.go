// Command client is a small interactive terminal client for the wirechat
// server: it prints server lines, forwards typed lines, and answers
// heartbeat PINGs automatically so an idle-but-alive terminal session stays
// connected.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/NicolasHaas/wirechat/pkg/protocol"
)

// defaultPort matches the server's default listen port.
const defaultPort = 4000

func main() {
	host := flag.String("host", "localhost", "Server host")
	port := flag.Int("port", 0, fmt.Sprintf("Server port (default %d)", defaultPort))
	flag.Parse()

	p := *port
	if p == 0 {
		if arg := flag.Arg(0); arg != "" {
			var err error
			p, err = strconv.Atoi(arg)
			if err != nil || p <= 0 {
				fmt.Fprintf(os.Stderr, "invalid port argument %q\n", arg)
				os.Exit(1)
			}
		} else {
			p = defaultPort
		}
	}

	addr := net.JoinHostPort(*host, strconv.Itoa(p))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s: %v\nmake sure the server is running\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Connected to chat server at %s\n", addr)
	fmt.Println("Type your commands (LOGIN <username>, MSG <text>, WHO, DM <user> <text>, ...)")
	fmt.Println("Press Ctrl+C to disconnect")

	done := make(chan struct{})

	// Reader: print server lines, answering heartbeat probes silently.
	go func() {
		defer close(done)
		framer := protocol.NewFramer(0)
		buf := make([]byte, 1024)
		for {
			n, rerr := conn.Read(buf)
			if n > 0 {
				frames, ferr := framer.Push(buf[:n])
				for _, line := range frames {
					if line == protocol.ReplyPing {
						_, _ = fmt.Fprintf(conn, "%s\n", protocol.ReplyPong)
						continue
					}
					fmt.Println(line)
				}
				if ferr != nil {
					fmt.Fprintln(os.Stderr, "server sent an oversized line, disconnecting")
					return
				}
			}
			if rerr != nil {
				return
			}
		}
	}()

	// Ctrl+C closes the connection cleanly; the reader then sees EOF.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nDisconnecting...")
		_ = conn.Close()
	}()

	// Writer: forward typed lines.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
				return
			}
		}
		// stdin closed: hang up.
		_ = conn.Close()
	}()

	<-done
	fmt.Println("Connection closed")
}

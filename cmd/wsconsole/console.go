package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wsconsole/config"
	"wsconsole/internal/app"
	"wsconsole/internal/dom"
	"wsconsole/internal/eventloop"
	"wsconsole/internal/logging"
	"wsconsole/internal/model"
	"wsconsole/internal/transport/ws"
)

const drainTimeout = time.Second

func newConsoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Read commands from stdin, send them over /ws and print the status",
		Long: `Connects to the command server and, once the connection is open, submits
every stdin line as a command. Status updates are printed as "status: <text>".
The console exits on EOF, on a signal, or when the connection closes before
it opens.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			return runConsole(cmd.Context(), cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("origin", "http://localhost:8080", "page origin the WebSocket path is resolved against")
	cmd.Flags().String("path", "/ws", "WebSocket path")
	cmd.Flags().String("transport", config.TransportGorilla, "WebSocket client: gorilla or coder")
	return cmd
}

func newDialer(cfg config.ClientConfig) ws.Dialer {
	if cfg.Transport == config.TransportCoder {
		return ws.NewCoderDialer()
	}
	return ws.NewGorillaDialer(cfg.HandshakeTimeout)
}

// runConsole drives the command page from in: every line is submitted as
// the command field. Status updates are written to out.
func runConsole(ctx context.Context, cfg *config.Config, log zerolog.Logger, in io.Reader, out io.Writer) error {
	url, err := ws.ResolveURL(cfg.Client.Origin, cfg.Client.Path)
	if err != nil {
		return err
	}

	loop := eventloop.New()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	conn := ws.New(loop, url,
		ws.WithDialer(newDialer(cfg.Client)),
		ws.WithLogger(logging.Component(log, "conn")))
	page, err := app.NewPage(loop, conn, log)
	if err != nil {
		return err
	}
	page.Doc.OnTextChange.Subscribe(func(c dom.TextChange) {
		if c.ID == app.StatusElementID {
			fmt.Fprintf(out, "status: %s\n", c.Text)
		}
	})

	// true once open, false if the connection closed first.
	ready := make(chan bool, 1)
	conn.OnOpen.Subscribe(func(model.OpenEvent) {
		select {
		case ready <- true:
		default:
		}
	})
	conn.OnClose.Subscribe(func(model.CloseEvent) {
		select {
		case ready <- false:
		default:
		}
	})

	log.Info().Str("url", url).Msg("connecting")
	page.Open(ctx)

	select {
	case <-ctx.Done():
	case open := <-ready:
		if open {
			submitLines(ctx, page, in, log)
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	// Submissions still queued on the loop go out before the close.
	if err := loop.Do(drainCtx, func() {}); err != nil {
		return err
	}
	_ = page.Close()
	return loop.Do(drainCtx, func() {})
}

func submitLines(ctx context.Context, page *app.Page, in io.Reader, log zerolog.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Warn().Err(err).Msg("stdin read failed")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			page.SubmitCommand(line)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// watchClient follows the definition pushes of one channel.
type watchClient struct {
	conn *websocket.Conn
}

func dialWatch(ctx context.Context, addr string) (*watchClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &watchClient{conn: conn}, nil
}

func (c *watchClient) Close() error {
	return c.conn.Close()
}

// readDefinitions prints every pushed definition until the server closes the
// socket, ctx ends, or limit frames were printed (limit <= 0 means no limit).
func (c *watchClient) readDefinitions(ctx context.Context, out io.Writer, limit int) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	for n := 0; limit <= 0 || n < limit; n++ {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if n > 0 {
			fmt.Fprintln(out, "---")
		}
		if len(data) == 0 {
			fmt.Fprintln(out, "(no content)")
			continue
		}
		fmt.Fprintln(out, string(data))
	}
	return nil
}

// watchURL turns a server base URL into the push socket address.
func watchURL(base, channel string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", base)
	}
	if !strings.HasSuffix(u.Path, "/api/content/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/api/content/ws"
	}
	q := u.Query()
	if channel != "" {
		q.Set("channel", channel)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func newWatchCommand() *cobra.Command {
	var channel string
	var count int

	cmd := &cobra.Command{
		Use:   "watch URL",
		Short: "Print definitions pushed by a running ledserver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := watchURL(args[0], channel)
			if err != nil {
				return err
			}
			client, err := dialWatch(cmd.Context(), addr)
			if err != nil {
				return err
			}
			defer client.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", addr)
			return client.readDefinitions(cmd.Context(), cmd.OutOrStdout(), count)
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "live", "Channel to follow: live or test")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many definitions")
	return cmd
}

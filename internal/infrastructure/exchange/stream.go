// Package exchange provides the shared websocket stream loop the per-venue
// feeds are built on.
package exchange

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type StreamConfig struct {
	Name      string // log tag, e.g. "BINANCE/futures"
	URL       string
	Subscribe string // optional payload written right after connect
}

// Stream dials cfg.URL and forwards every received frame to out, reconnecting
// with exponential backoff on any transport failure. It returns only when ctx
// is cancelled. The caller owns out and closes it after Stream returns.
func Stream(ctx context.Context, cfg StreamConfig, out chan<- []byte) {
	backoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Warn().Str("feed", cfg.Name).Str("url", cfg.URL).Msg("ws connecting")
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		conn, _, err := websocket.DefaultDialer.DialContext(cctx, cfg.URL, nil)
		cancel()
		if err != nil {
			log.Error().Str("feed", cfg.Name).Err(err).Msg("ws dial failed")
			if !sleep(ctx, backoff) {
				return
			}
			backoff = minDur(backoff*2, maxBackoff)
			continue
		}

		if cfg.Subscribe != "" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(cfg.Subscribe)); err != nil {
				_ = conn.Close()
				log.Error().Str("feed", cfg.Name).Err(err).Msg("subscribe failed")
				if !sleep(ctx, backoff) {
					return
				}
				backoff = minDur(backoff*2, maxBackoff)
				continue
			}
		}

		backoff = 500 * time.Millisecond
		log.Info().Str("feed", cfg.Name).Msg("ws connected")

		err = readLoop(ctx, conn, func(b []byte) {
			select {
			case <-ctx.Done():
			case out <- b:
			}
		})

		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}

		log.Warn().Str("feed", cfg.Name).Err(err).Msg("ws disconnected, reconnecting")
		if !sleep(ctx, backoff) {
			return
		}
		backoff = minDur(backoff*2, maxBackoff)
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, onMsg func([]byte)) error {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(25 * time.Second)
	defer pingTicker.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			onMsg(b)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

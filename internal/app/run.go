// Package app wires the controller together and runs it.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/coreman2200/funtimes-lightstrip/internal/metrics"
)

// Run serves HTTP (link and/or metrics, when configured), runs the
// control loop until ctx ends, then blanks the strip and closes the
// driver.
func (c *Core) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	spawn := func(f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				errs <- err
				cancel()
			}
		}()
	}

	if c.Cfg.Metrics.Addr != "" {
		defer metrics.Attach(c.Bus)()
	}
	servers := c.servers()
	for _, srv := range servers {
		srv := srv
		spawn(func() error {
			c.log.Info().Str("addr", srv.Addr).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	spawn(func() error {
		c.notify(daemon.SdNotifyReady)
		return c.Dispatcher.Run(ctx, time.Duration(c.Cfg.TickMs)*time.Millisecond)
	})
	spawn(func() error {
		c.watchdog(ctx)
		return nil
	})

	<-ctx.Done()
	c.notify(daemon.SdNotifyStopping)
	for _, srv := range servers {
		_ = srv.Close()
	}
	if c.Server != nil {
		_ = c.Server.Close()
	}
	wg.Wait()
	close(errs)
	err := <-errs

	c.Strip.Clear()
	if ferr := c.Strip.Flush(); ferr != nil {
		c.log.Warn().Err(ferr).Msg("blanking strip failed")
	}
	if cerr := c.Driver.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *Core) servers() []*http.Server {
	muxes := map[string]*http.ServeMux{}
	mux := func(addr string) *http.ServeMux {
		if m, ok := muxes[addr]; ok {
			return m
		}
		m := http.NewServeMux()
		muxes[addr] = m
		return m
	}
	if c.Server != nil && c.Cfg.Link.Addr != "" {
		c.Server.Routes(mux(c.Cfg.Link.Addr))
	}
	if c.Cfg.Metrics.Addr != "" {
		mux(c.Cfg.Metrics.Addr).Handle("/metrics", metrics.Handler())
	}
	var out []*http.Server
	for addr, m := range muxes {
		out = append(out, &http.Server{
			Addr:         addr,
			Handler:      withCORS(m),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		})
	}
	return out
}

func (c *Core) notify(state string) {
	if ok, err := daemon.SdNotify(false, state); err != nil {
		c.log.Debug().Err(err).Msg("sd_notify failed")
	} else if ok {
		c.log.Debug().Str("state", state).Msg("sd_notify sent")
	}
}

// watchdog pings systemd at half the configured interval while the
// control loop keeps ticking.
func (c *Core) watchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	last := c.Dispatcher.Ticks()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			now := c.Dispatcher.Ticks()
			if now == last {
				c.log.Warn().Msg("control loop stalled; withholding watchdog")
				continue
			}
			last = now
			c.notify(daemon.SdNotifyWatchdog)
		}
	}
}

// withCORS lets browser dashboards on another origin reach the link and
// metrics endpoints.
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}

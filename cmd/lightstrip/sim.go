package main

import (
	"io"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstrip/internal/app"
	"github.com/coreman2200/funtimes-lightstrip/internal/hw"
	"github.com/coreman2200/funtimes-lightstrip/internal/led"
	"github.com/coreman2200/funtimes-lightstrip/internal/sim"
)

func newSimCmd() *cobra.Command {
	var linked bool
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the controller in the terminal with a virtual encoder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the screen owns the terminal; keep logs off it
			cmd.SetErr(io.Discard)
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}

			pins, clk, dt, sw := hw.Virtual()
			s := sim.New(screen, clk, dt, sw)
			s.Linked.Store(linked)
			core, err := app.Build(e.cfg, app.HW{Pins: pins, Driver: led.NewSim(e.log), Link: s}, e.log)
			if err != nil {
				screen.Fini()
				return err
			}
			s.Core = core

			ctx, cancel := signalContext(e.log)
			defer cancel()
			return s.Run(ctx, time.Duration(e.cfg.TickMs)*time.Millisecond)
		},
	}
	cmd.Flags().BoolVar(&linked, "linked", false, "start with the link up")
	return cmd
}

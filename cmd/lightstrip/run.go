package main

import (
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstrip/internal/app"
	"github.com/coreman2200/funtimes-lightstrip/internal/hw"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the controller on real hardware",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := hw.Init(e.log); err != nil {
				return err
			}
			pins, err := hw.Open(e.cfg.Pins.CLK, e.cfg.Pins.DT, e.cfg.Pins.SW)
			if err != nil {
				return err
			}
			drv, err := app.OpenDriver(e.cfg, e.log)
			if err != nil {
				return err
			}
			core, err := app.Build(e.cfg, app.HW{Pins: pins, Driver: drv}, e.log)
			if err != nil {
				_ = drv.Close()
				return err
			}
			e.log.Info().
				Int("pixels", e.cfg.Strip.Length).
				Str("driver", e.cfg.Strip.Driver).
				Str("link", e.cfg.Link.Mode).
				Msg("controller starting")

			ctx, cancel := signalContext(e.log)
			defer cancel()
			return core.Run(ctx)
		},
	}
}

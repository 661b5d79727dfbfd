package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstrip/internal/app"
	"github.com/coreman2200/funtimes-lightstrip/internal/hw"
	"github.com/coreman2200/funtimes-lightstrip/internal/selftest"
)

func newSelftestCmd() *cobra.Command {
	var (
		kind   string
		cycles int
		stepMs int
	)
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Walk the strip through a wiring test pattern",
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := selftest.ParseKind(kind)
			if err != nil {
				return fmt.Errorf("%w (want one of %v)", err, selftest.Kinds())
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := hw.Init(e.log); err != nil {
				return err
			}
			drv, err := app.OpenDriver(e.cfg, e.log)
			if err != nil {
				return err
			}
			// the encoder is not used; virtual pins keep Build happy
			pins, _, _, _ := hw.Virtual()
			core, err := app.Build(e.cfg, app.HW{Pins: pins, Driver: drv}, e.log)
			if err != nil {
				_ = drv.Close()
				return err
			}
			defer core.Driver.Close()

			ctx, cancel := signalContext(e.log)
			defer cancel()
			r := selftest.NewRunner(selftest.Plan{Kind: k, Cycles: cycles})
			return r.Run(ctx, core.Strip, time.Duration(stepMs)*time.Millisecond, e.log)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(selftest.IndexSweep), "pattern: index_sweep or rgb_channels")
	cmd.Flags().IntVar(&cycles, "cycles", 1, "rgb_channels cycles")
	cmd.Flags().IntVar(&stepMs, "step-ms", 50, "time per step")
	return cmd
}

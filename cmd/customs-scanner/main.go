package main

import (
	"log/slog"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/cmd/customs-scanner/commands"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/osutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "customs-scanner")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer t.Shutdown(ctx)
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}

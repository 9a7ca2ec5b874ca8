package cli

import (
	"fmt"
	"io"

	"github.com/asteroid-belt/pantry/internal/db"
	"github.com/asteroid-belt/pantry/internal/telemetry"
)

// showStartupNotification prints the one-time telemetry notice.
// Returns true if the notice was shown.
func showStartupNotification(database *db.DB, w io.Writer) bool {
	if database == nil || !telemetry.IsEnabled() {
		return false
	}

	state, err := database.GetUserState()
	if err != nil || state.TelemetryNoticed {
		return false
	}

	_, _ = fmt.Fprintf(w, "\nPantry sends anonymous usage events to help improve the tool.\n")
	_, _ = fmt.Fprintf(w, "Set %s=false to opt out.\n\n", telemetry.EnvEnabled)

	// Non-fatal if this fails; the notice shows again next time.
	_ = database.MarkTelemetryNoticed()

	return true
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m5dial/spiffs-uploader/internal/model"
	"github.com/m5dial/spiffs-uploader/internal/tui"
)

// printEvents writes events in log-pane format; info events only with debug
func printEvents(w io.Writer, events []model.Event, debug bool) {
	for _, e := range events {
		if e.Visible(debug) {
			fmt.Fprintln(w, e.String())
		}
	}
}

// failed reports whether any event is an error
func failed(events []model.Event) bool {
	return model.CountLevel(events, model.EventError) > 0
}

// buildImage probes first unless force is set, then packs dir into out.
// The probe stands in for the Connect button the UI requires before a build.
func buildImage(ctx context.Context, actions tui.Actions, st model.Session, dir, out string, force bool) []model.Event {
	var events []model.Event
	if force {
		st.Connected = true
	} else {
		var probeEvents []model.Event
		st, probeEvents = actions.Probe(ctx, st)
		events = append(events, probeEvents...)
		if !st.Connected {
			return events
		}
	}

	_, buildEvents := actions.Build(ctx, st, dir, out)
	return append(events, buildEvents...)
}

// checkPath returns an error unless path exists and is (or is not) a directory
func checkPath(path string, wantDir bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if wantDir && !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if !wantDir && info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

package mode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/khaledhikmat/vs-detect/service/lgr"
)

var detectOutput io.Writer = os.Stdout

// Detect runs detection once on the image file named by args[0] and prints the
// JSON results
func Detect(canxCtx context.Context, svcs ServicesFactory, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("detect mode needs an image path")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	results, err := svcs.InferenceSvc.Detect(canxCtx, data)
	if err != nil {
		return err
	}

	lgr.Logger.Info("image processed",
		slog.String("image", args[0]),
		slog.Int("detections", len(results)),
	)

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(detectOutput, string(out))
	return err
}

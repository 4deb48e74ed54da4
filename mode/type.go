package mode

import (
	"context"

	"github.com/khaledhikmat/vs-detect/service/config"
	"github.com/khaledhikmat/vs-detect/service/inference"
)

type ServicesFactory struct {
	CfgSvc       config.IService
	InferenceSvc inference.IService
}

// Processor runs one mode until it finishes or the context is cancelled.
// args are the command line arguments after the mode name.
type Processor func(canxCtx context.Context, svcs ServicesFactory, args []string) error

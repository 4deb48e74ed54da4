package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-detect/detection"
	"github.com/khaledhikmat/vs-detect/service/config"
)

// Assets names the three files the detector needs at startup
type Assets struct {
	Config     string
	Weights    string
	ClassNames string
}

func AssetsFromConfig(cfgSvc config.IService) Assets {
	return Assets{
		Config:     cfgSvc.GetModelConfigFile(),
		Weights:    cfgSvc.GetModelWeightsFile(),
		ClassNames: cfgSvc.GetClassNamesFile(),
	}
}

// Verify fails on the first missing file, in config, weights, names order
func (a Assets) Verify() error {
	for _, f := range []string{a.Config, a.Weights, a.ClassNames} {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("'%s' topilmadi!", f)
			}
			return xerrors.Errorf("checking %s: %w", f, err)
		}
	}
	return nil
}

func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("opening class names: %w", err)
	}
	defer f.Close()

	labels, err := detection.ParseLabels(f)
	if err != nil {
		return nil, xerrors.Errorf("reading class names: %w", err)
	}
	return labels, nil
}

// LoadNet reads the darknet network. The caller owns the returned net.
func LoadNet(a Assets) (gocv.Net, error) {
	net := gocv.ReadNet(a.Weights, a.Config)
	if net.Empty() {
		return net, fmt.Errorf("error reading network from %s and %s", a.Config, a.Weights)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return net, xerrors.Errorf("error setting backend: %w", err)
	}

	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return net, xerrors.Errorf("error setting target: %w", err)
	}

	return net, nil
}

// OutputLayerNames lists the unconnected output layers (one per detection head)
func OutputLayerNames(net *gocv.Net) []string {
	names := []string{}
	for _, id := range net.GetUnconnectedOutLayers() {
		layer := net.GetLayer(id)
		name := layer.GetName()
		layer.Close()
		if name != "_input" {
			names = append(names, name)
		}
	}
	return names
}

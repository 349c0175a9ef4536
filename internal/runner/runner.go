package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/pkg/capability"
	"github.com/projectdiscovery/lanscan/pkg/oui"
	"github.com/projectdiscovery/lanscan/pkg/scanner"
	"github.com/projectdiscovery/lanscan/pkg/types"
)

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
	config  types.ScanConfig
	// appended after the defaults, used to swap collaborators in tests
	scannerOptions []scanner.Option
	vendorURL      string
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	cfg, err := options.ScanConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid scan configuration: %w", err)
	}
	return &Runner{options: options, config: cfg}, nil
}

// Run performs one scan and writes its report as a single json line.
func (r *Runner) Run(ctx context.Context) error {
	table := r.loadVendors(ctx)

	var opts []scanner.Option
	if r.options.ForcePing {
		gologger.Verbose().Msgf("Raw frame check skipped, using ping sweep")
	} else {
		opts = append(opts, scanner.WithCapability(capability.CanSendRawFrames))
	}
	opts = append(opts, r.scannerOptions...)

	report, err := scanner.New(r.config, table, opts...).Run(ctx)
	if err != nil {
		return err
	}
	gologger.Info().Msgf("Scan %s finished in %s, %d hosts", report.ScanID, report.Duration, len(report.Hosts))
	return r.writeReport(report)
}

// loadVendors never fails; without a table hosts just carry no vendor.
func (r *Runner) loadVendors(ctx context.Context) *oui.Table {
	table, err := oui.Load(ctx, oui.LoadOptions{
		Path:    r.options.OUIPath,
		Refresh: r.options.OUIUpdate,
		URL:     r.vendorURL,
	})
	if err != nil {
		gologger.Warning().Msgf("Vendor lookup disabled: %s", err)
		return oui.NewTable(nil)
	}
	return table
}

func (r *Runner) writeReport(report *types.ScanReport) error {
	var w io.Writer = os.Stdout
	if r.options.Output != "" {
		f, err := os.Create(r.options.Output)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		w = f
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("could not marshal report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	return nil
}

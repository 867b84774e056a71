package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pthm/islands/internal/catalog"
	"github.com/pthm/islands/internal/components"
	"github.com/pthm/islands/lib/dom"
	"github.com/pthm/islands/lib/hydrate"
)

func runCheck(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	dev := fs.Bool("dev", false, "treat markup mismatches as failures")
	catalogPath := fs.String("catalog", "", "YAML product catalog used by server-side components")
	timeout := fs.Duration("timeout", 10*time.Second, "timeout for fetching a page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("check: expected one url or file, got %d", fs.NArg())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if *catalogPath != "" {
		c, err := catalog.Load(*catalogPath)
		if err != nil {
			return err
		}
		ctx = catalog.WithCatalog(ctx, c)
	}

	doc, err := loadPage(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return check(ctx, doc, *dev, out)
}

func loadPage(ctx context.Context, src string) (*dom.Document, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dom.Parse(f)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("check: GET %s: %s", src, resp.Status)
	}
	return dom.Parse(resp.Body)
}

// check hydrates doc against the storefront registry and prints one line
// per island and per warning.
func check(ctx context.Context, doc *dom.Document, dev bool, out io.Writer) error {
	h := hydrate.New(components.Registry(), hydrate.TemplMounter{},
		hydrate.WithDevMode(dev),
		hydrate.WithEventHandler(func(ev hydrate.Event) {
			switch ev.Type {
			case hydrate.EventPropsDecode:
				fmt.Fprintf(out, "warning: island %d (%s): malformed props: %v\n", ev.Index, ev.ID, ev.Err)
			case hydrate.EventMismatch:
				fmt.Fprintf(out, "warning: island %d (%s): server markup did not match\n", ev.Index, ev.ID)
			}
		}))
	report := h.Hydrate(ctx, doc)

	for _, res := range report.Results {
		line := fmt.Sprintf("%d\t%s\t%s", res.Index, res.ID, res.State)
		if res.Err != nil {
			line += "\t" + res.Err.Error()
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%d islands: %d mounted, %d skipped, %d failed\n",
		len(report.Results),
		report.Count(hydrate.StateMounted),
		report.Count(hydrate.StateSkipped),
		report.Count(hydrate.StateFailed))
	return report.Err()
}

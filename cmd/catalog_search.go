package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront.GO/client/currency"
	"storefront.GO/client/filters"
	"storefront.GO/client/gateway"
	"storefront.GO/client/request"
	"storefront.GO/client/search"
	"storefront.GO/config"
)

var searchArgs struct {
	api      string
	currency string
	counts   bool
	timeout  time.Duration
}

var catalogSearchCmd = &cobra.Command{
	Use:   "catalog:search [query-string]",
	Short: "Query the catalog API the way the storefront page does",
	Long: `Runs one search through the storefront client: the query string is read
like the page location (e.g. "search=iris&gender=female&seasonIds=1,2&page=2").`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw string
		if len(args) == 1 {
			raw = strings.TrimPrefix(args[0], "?")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), searchArgs.timeout)
		defer cancel()
		return runCatalogSearch(ctx, cmd.OutOrStdout(), raw)
	},
}

func init() {
	f := catalogSearchCmd.Flags()
	f.StringVar(&searchArgs.api, "api", "", "API base URL (default API_BASE_URL)")
	f.StringVar(&searchArgs.currency, "currency", "", "Display currency, e.g. USD")
	f.BoolVar(&searchArgs.counts, "counts", false, "Also print facet counts")
	f.DurationVar(&searchArgs.timeout, "timeout", 15*time.Second, "Give up after this long")
	rootCmd.AddCommand(catalogSearchCmd)
}

func runCatalogSearch(ctx context.Context, out io.Writer, rawQuery string) error {
	base := searchArgs.api
	if base == "" {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		base = cfg.APIBaseURL
	}
	gw, err := gateway.New(gateway.Config{BaseURL: base})
	if err != nil {
		return err
	}
	api := request.New(gw, zap.NewNop())

	var rates *currency.Snapshot
	if searchArgs.currency != "" {
		rates, err = currency.NewRateClient(api, nil, 0).Snapshot(ctx)
		if err != nil {
			return err
		}
	}

	view := newPrintView(searchArgs.counts)
	orch := search.New(search.NewAPICatalog(api), view, search.Config{})
	ctrl := search.NewController(filters.NewStore(filters.NewMemoryLocation(rawQuery)), orch, 0)
	defer ctrl.Close()
	if rates != nil {
		ctrl.SetCurrency(searchArgs.currency, rates)
	}

	select {
	case res := <-view.done:
		if res.err != nil {
			return res.err
		}
		printPage(out, res.page, searchArgs.currency, rates)
		if searchArgs.counts {
			select {
			case counts := <-view.counts:
				printCounts(out, counts)
			case <-ctx.Done():
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type searchResult struct {
	page search.ProductPage
	err  error
}

// printView collects the first settled result of the orchestrator.
type printView struct {
	done   chan searchResult
	counts chan filters.Counts
}

func newPrintView(counts bool) *printView {
	return &printView{done: make(chan searchResult, 1), counts: make(chan filters.Counts, 1)}
}

func (v *printView) SetLoading(bool) {}
func (v *printView) ScrollToTop()    {}

func (v *printView) ShowProducts(page search.ProductPage) {
	select {
	case v.done <- searchResult{page: page}:
	default:
	}
}

func (v *printView) ShowError(err error, _ func()) {
	select {
	case v.done <- searchResult{err: fmt.Errorf("search: %w", err)}:
	default:
	}
}

func (v *printView) ShowCounts(c filters.Counts) {
	select {
	case v.counts <- c:
	default:
	}
}

func (v *printView) CountsFailed(error) {
	select {
	case v.counts <- nil:
	default:
	}
}

func printPage(out io.Writer, page search.ProductPage, display string, rates *currency.Snapshot) {
	fmt.Fprintf(out, "%d products, page %d of %d\n", page.Total, page.Page, max(page.TotalPages, 1))
	unit := strings.ToUpper(display)
	if unit == "" && rates != nil {
		unit = rates.Canonical
	}
	for _, p := range page.Items {
		price := currency.FormatAmount(currency.ToDisplay(p.Price, display, rates))
		fmt.Fprintf(out, "  #%-5d %-28s %-20s %10s %s  %.1f\n", p.ID, p.Name, p.Brand, price, unit, p.Rating)
	}
}

func printCounts(out io.Writer, counts filters.Counts) {
	if counts == nil {
		fmt.Fprintln(out, "facet counts unavailable")
		return
	}
	facets := make([]string, 0, len(counts))
	for f := range counts {
		facets = append(facets, f)
	}
	sort.Strings(facets)
	for _, f := range facets {
		values := make([]string, 0, len(counts[f]))
		for val, n := range counts[f] {
			values = append(values, fmt.Sprintf("%s=%d", val, n))
		}
		sort.Strings(values)
		fmt.Fprintf(out, "  %-18s %s\n", f, strings.Join(values, " "))
	}
}

// Package currency serves exchange-rate snapshots from the rate table, cached
// in redis when available, and refreshes the table from an upstream quote feed.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	currencyEntity "storefront.GO/model/entity/currency"
	currencyRepo "storefront.GO/model/repository/currency"
)

const snapshotKey = "storefront:currency:snapshot"

// ErrNoSource is returned by Refresh when no quote feed is configured.
var ErrNoSource = errors.New("currency: no rates source configured")

// Snapshot is the wire form of the current rates. Rates[code] canonical units
// buy one unit of code.
type Snapshot struct {
	Base       string                     `json:"base"`
	Rates      map[string]decimal.Decimal `json:"rates"`
	FeePercent decimal.Decimal            `json:"feePercent"`
	FetchedAt  time.Time                  `json:"fetchedAt"`
}

type Options struct {
	Canonical  string
	FeePercent float64
	TTL        time.Duration
	SourceURL  string
	Redis      *redis.Client
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Service struct {
	repo      *currencyRepo.RateRepository
	redis     *redis.Client
	http      *http.Client
	logger    *zap.Logger
	canonical string
	fee       decimal.Decimal
	ttl       time.Duration
	sourceURL string
	now       func() time.Time
}

func NewService(repo *currencyRepo.RateRepository, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		redis:     opts.Redis,
		http:      opts.HTTPClient,
		logger:    opts.Logger,
		canonical: strings.ToUpper(opts.Canonical),
		fee:       decimal.NewFromFloat(opts.FeePercent),
		ttl:       opts.TTL,
		sourceURL: opts.SourceURL,
		now:       time.Now,
	}
}

// Snapshot returns the current rates. A redis failure falls back to the database.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.cached(ctx); ok {
		return snap, nil
	}

	rates, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("currency: load rates: %w", err)
	}
	snap := &Snapshot{
		Base:       s.canonical,
		Rates:      make(map[string]decimal.Decimal, len(rates)),
		FeePercent: s.fee,
		FetchedAt:  s.now().UTC(),
	}
	for _, r := range rates {
		if r.CurrencyCode != s.canonical && r.Rate.IsPositive() {
			snap.Rates[r.CurrencyCode] = r.Rate
		}
	}
	s.store(ctx, snap)
	return snap, nil
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, snapshotKey).Err(); err != nil {
		s.logger.Warn("drop cached rates", zap.Error(err))
	}
}

// feed is the upstream quote format: units of each currency per canonical unit.
type feed struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Refresh pulls quotes from the configured feed, stores them inverted into
// canonical units per display unit and drops the cached snapshot.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	if s.sourceURL == "" {
		return 0, ErrNoSource
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("currency: build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("currency: fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("currency: feed returned status %d", resp.StatusCode)
	}

	var f feed
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return 0, fmt.Errorf("currency: decode feed: %w", err)
	}
	if f.Base != "" && !strings.EqualFold(f.Base, s.canonical) {
		return 0, fmt.Errorf("currency: feed base %s does not match %s", f.Base, s.canonical)
	}

	rows := make([]currencyEntity.ExchangeRate, 0, len(f.Rates))
	for code, perCanonical := range f.Rates {
		code = strings.ToUpper(code)
		if code == s.canonical || !perCanonical.IsPositive() {
			continue
		}
		rows = append(rows, currencyEntity.ExchangeRate{
			CurrencyCode: code,
			Rate:         decimal.NewFromInt(1).DivRound(perCanonical, 8),
		})
	}
	if err := s.repo.Upsert(ctx, rows); err != nil {
		return 0, fmt.Errorf("currency: store rates: %w", err)
	}
	s.Invalidate(ctx)
	s.logger.Info("exchange rates refreshed", zap.Int("currencies", len(rows)))
	return len(rows), nil
}

func (s *Service) cached(ctx context.Context) (*Snapshot, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read cached rates", zap.Error(err))
		}
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (s *Service) store(ctx context.Context, snap *Snapshot) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, snapshotKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache rates", zap.Error(err))
	}
}

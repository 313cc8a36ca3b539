package treemap

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/iish/treemap-go/internal/cache"
	"github.com/iish/treemap-go/internal/config"
	"github.com/iish/treemap-go/internal/source"
	"github.com/iish/treemap-go/pkg/treemap/builder"
	"github.com/iish/treemap-go/pkg/treemap/filter"
	"github.com/iish/treemap-go/pkg/treemap/filterinfo"
	"github.com/iish/treemap-go/pkg/treemap/labour"
	"github.com/iish/treemap-go/pkg/treemap/models"
	"github.com/iish/treemap-go/pkg/treemap/parser"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

// Service builds labour relations treemaps. The lookup tables are built
// once; the service is safe for concurrent use.
type Service struct {
	cfg        *config.Config
	relations  *labour.Relations
	periods    *labour.TimePeriods
	resolver   *source.Resolver
	cache      *cache.Cache
	population *labour.Population
	window     *labour.WindowFilter
	filterInfo *labour.FilterInfoDeriver
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCache replaces the dataset cache built from the configuration.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// NewService creates a service from a validated configuration.
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.cache == nil {
		s.cache = cache.New(cfg.Cache.MaximumSize, cfg.Cache.MaxAccessTime, cache.WithLogger(s.logger))
	}

	relations, err := labour.NewRelations(cfg.Relations())
	if err != nil {
		return nil, err
	}
	world, err := cfg.World()
	if err != nil {
		return nil, err
	}

	virtual := cfg.Virtual()
	s.relations = relations
	s.periods = labour.NewTimePeriods(cfg.Periods(), cfg.XLSX.Columns.Year, cfg.Treemap.Empty)
	ingester := parser.NewIngester(cfg.Ingester(), relations, s.periods, s.logger)
	s.resolver = source.NewResolver(ingester, cfg.StandardDataset, s.logger)
	s.population = labour.NewPopulation(world, cfg.PopulationColumns())
	s.window = labour.NewWindowFilter(cfg.XLSX.Columns.Country, s.periods)
	s.filterInfo = labour.NewFilterInfoDeriver(filterinfo.Deriver{
		Empty:             cfg.Treemap.Empty,
		AlwaysCategorical: cfg.AlwaysCategorical(),
		Labels:            cfg.Treemap.Labels,
	}, s.periods, virtual.TimePeriod)
	return s, nil
}

// Cache returns the dataset cache.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// Dataset resolves the given dataset ids through the cache and combines
// them in order.
func (s *Service) Dataset(ctx context.Context, ids []string) (tabular.Dataset, error) {
	ids = nonBlank(ids)
	if len(ids) == 0 {
		return nil, ErrNoDatasets
	}

	datasets := make([]tabular.Dataset, 0, len(ids))
	for _, id := range ids {
		src, err := s.resolver.Resolve(id)
		if err != nil {
			return nil, NewIngestionError(id, err)
		}
		d, err := s.cache.GetOrLoad(ctx, src.Key, func(ctx context.Context) (tabular.Dataset, error) {
			t, err := s.resolver.Load(ctx, src)
			if err != nil {
				return nil, err
			}
			return t, nil
		})
		if err != nil {
			return nil, NewIngestionError(id, err)
		}
		datasets = append(datasets, d)
	}

	if len(datasets) == 1 {
		return datasets[0], nil
	}
	return tabular.NewMulti(datasets...), nil
}

// Columns returns the sorted column names of the combined datasets.
func (s *Service) Columns(ctx context.Context, ids []string) ([]string, error) {
	d, err := s.Dataset(ctx, ids)
	if err != nil {
		return nil, err
	}
	headers := d.Headers()
	sort.Strings(headers)
	return headers, nil
}

// Treemap builds the treemap, filter information, legend and time periods
// for a request.
func (s *Service) Treemap(ctx context.Context, req Request) (*models.LabourTreemapInfo, error) {
	start := time.Now()

	data, err := s.Dataset(ctx, req.Datasets)
	if err != nil {
		return nil, err
	}
	loaded := data.Size()

	data, err = s.filter(data, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("filtered dataset", slog.Int("rows", loaded), slog.Int("kept", data.Size()))

	size := req.Size
	if size == "" {
		size = s.cfg.Treemap.Size
	}
	opts := builder.Options{
		Hierarchy:   nonBlank(req.Hierarchy),
		SizeColumn:  size,
		RoundSize:   s.cfg.Treemap.RoundSize,
		ColorColumn: s.cfg.Virtual().Color,
		CodeColumn:  s.cfg.Virtual().Code,
		EmptyLabels: s.cfg.Treemap.EmptyLabels,
		Suffixes:    s.cfg.Treemap.Suffix,
	}
	if req.Multiples {
		opts.Multiples = s.cfg.Multiples()
	}
	root, err := builder.Build(data, s.cfg.Treemap.Name, opts)
	if err != nil {
		return nil, err
	}

	infos, err := s.filterInfo.Derive(data, nonBlank(req.FilterInfo))
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []models.FilterInfo{}
	}

	periods, err := s.periods.MatchFor(data, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("built treemap",
		slog.Any("datasets", req.Datasets),
		slog.Int("rows", data.Size()),
		slog.Int("leaves", len(root.Leaves())),
		slog.Duration("duration", time.Since(start)))

	return &models.LabourTreemapInfo{
		TreemapInfo: models.TreemapInfo{
			Treemap:    root,
			FilterInfo: infos,
			Legend:     s.relations.Legend(),
		},
		TimePeriods: periods,
	}, nil
}

// filter windows the dataset before adding the population it misses, so
// the synthetic rows, which carry no year, survive the window.
func (s *Service) filter(data tabular.Dataset, req Request) (tabular.Dataset, error) {
	if req.Window {
		windowed, err := s.window.Filter(data)
		if err != nil {
			return nil, err
		}
		data = windowed
	}
	if req.Population {
		enriched, err := s.population.Enrich(data)
		if err != nil {
			return nil, err
		}
		data = enriched
	}

	filters, err := req.Filters.Build(s.cfg.Treemap.Empty)
	if err != nil {
		return nil, err
	}
	return filter.Apply(data, filters...)
}

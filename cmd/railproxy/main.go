package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/transitforge/railproxy/config"
	"github.com/transitforge/railproxy/gtfs"
	"github.com/transitforge/railproxy/gtfsrt"
	"github.com/transitforge/railproxy/internal/clock"
	"github.com/transitforge/railproxy/match"
	"github.com/transitforge/railproxy/metrics"
	"github.com/transitforge/railproxy/proxy"
	"github.com/transitforge/railproxy/reconcile"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config error", slog.Any("error", err))
		os.Exit(1)
	}
	if key := os.Getenv("RAILPROXY_API_KEY"); key != "" {
		cfg.Upstream.APIKey = key
	}

	schedule, err := gtfs.Load(cfg.GTFS.Source)
	if err != nil {
		log.Error("schedule load error", slog.String("source", cfg.GTFS.Source), slog.Any("error", err))
		os.Exit(1)
	}
	tz := schedule.Timezone()
	log.Info("schedule loaded",
		slog.String("source", cfg.GTFS.Source),
		slog.Int("trips", len(schedule.AllTrips())),
		slog.String("timezone", tz.String()))

	matchOpts := match.Options{
		LateTripLimitSec:  cfg.Matching.LateTripLimitSec,
		DisableLooseMatch: cfg.Matching.DisableLooseMatch,
		LookbackDays:      cfg.Matching.LookbackDays,
	}

	fixup := make(map[string]bool)
	for _, routeID := range cfg.Matching.RoutesNeedingFixup {
		fixup[routeID] = true
	}
	rulesByFeed := make(map[string]reconcile.FeedRules)
	for _, feed := range cfg.Feeds {
		blacklist := make(map[string]bool)
		for _, routeID := range feed.RouteBlacklist {
			blacklist[routeID] = true
		}
		rulesByFeed[feed.ID] = reconcile.FeedRules{
			RouteBlacklist: blacklist,
			RouteRemap:     feed.RouteRemap,
		}
	}
	recOpts := reconcile.Options{
		LatencyLimitSec:    cfg.Matching.LatencyLimitSec,
		RoutesNeedingFixup: fixup,
		RulesByFeed:        rulesByFeed,
	}

	promSink := metrics.NewPrometheusSink()
	sink := multiSink{promSink, metrics.NewLogSink(log)}
	clk := clock.RealClock{}

	feedIDs := make([]string, 0, len(cfg.Feeds))
	reconcilers := make(map[string]*reconcile.Reconciler, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		feedIDs = append(feedIDs, feed.ID)
		reconcilers[feed.ID] = reconcile.New(newMatcher(cfg.Matching.Strategy, schedule, tz, matchOpts, log), tz, recOpts, sink, clk, log)
	}

	client := gtfsrt.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, time.Duration(cfg.Upstream.TimeoutSec)*time.Second)
	provider := proxy.NewProvider(client, reconcilers, feedIDs, time.Duration(cfg.Upstream.PollIntervalSec)*time.Second, clk, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := proxy.NewServer(cfg.Server.Port, provider, promSink.Registry, log)
	server.Start()
	go provider.Run(ctx)

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", slog.Any("error", err))
	}
}

func newMatcher(strategy string, schedule *gtfs.ScheduleIndex, tz *time.Location, opts match.Options, log *slog.Logger) match.Matcher {
	if strategy == "indexed" {
		return match.NewIndexedMatcher(schedule, tz, opts, log)
	}
	return match.NewScanningMatcher(schedule, tz, opts, log)
}

// multiSink fans metrics out to several sinks.
type multiSink []metrics.Sink

func (s multiSink) ReportRouteMetrics(routeID string, m *metrics.MatchMetrics) {
	for _, sink := range s {
		sink.ReportRouteMetrics(routeID, m)
	}
}

func (s multiSink) ReportFeedMetrics(feedID string, m *metrics.MatchMetrics) {
	for _, sink := range s {
		sink.ReportFeedMetrics(feedID, m)
	}
}

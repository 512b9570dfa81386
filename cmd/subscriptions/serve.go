package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/subscriptions"
	"github.com/dmitrymomot/subscriptions/handler"
	"github.com/dmitrymomot/subscriptions/pkg/config"
	"github.com/dmitrymomot/subscriptions/pkg/email"
	"github.com/dmitrymomot/subscriptions/pkg/httpserver"
	"github.com/dmitrymomot/subscriptions/pkg/logger"
	"github.com/dmitrymomot/subscriptions/pkg/pg"
	"github.com/dmitrymomot/subscriptions/pkg/redis"
	"github.com/dmitrymomot/subscriptions/pkg/task"
	"github.com/dmitrymomot/subscriptions/svc/billing"
	"github.com/dmitrymomot/subscriptions/svc/member"
	"github.com/dmitrymomot/subscriptions/svc/subscription"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		var (
			cfg     subscriptions.Config
			pgCfg   pg.Config
			rdbCfg  redis.Config
			httpCfg httpserver.Config
			mailCfg email.Config
		)
		for _, c := range []func() error{
			func() error { return config.Load(&cfg) },
			func() error { return config.Load(&pgCfg) },
			func() error { return config.Load(&rdbCfg) },
			func() error { return config.Load(&httpCfg) },
			func() error { return config.Load(&mailCfg) },
		} {
			if err := c(); err != nil {
				return err
			}
		}

		ctx := cmd.Context()

		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		rdb, err := redis.Connect(ctx, rdbCfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		processor, err := billing.NewStripeProcessor(cfg.StripeSecretKey,
			billing.WithStripeURL(cfg.StripeAPIURL),
			billing.WithStripeLogger(log),
		)
		if err != nil {
			return err
		}
		catalog := billing.NewCachedCatalog(
			billing.NewProcessorCatalog(processor, cfg.PlanFamily),
			rdb, cfg.CatalogCacheTTL, log,
		)
		// Lists cached by a previous release may use another plan family.
		if err := catalog.Invalidate(ctx); err != nil {
			log.WarnContext(ctx, "failed to drop cached plan lists", logger.Error(err))
		}

		var mailer email.Sender = email.NewLogSender(log)
		if mailCfg.Enabled() {
			if mailer, err = email.NewPostmarkSender(mailCfg); err != nil {
				return err
			}
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		runner := task.NewRunner(pg.NewTransactor(pool),
			task.WithLogger(log),
			task.WithHooks(task.NewHooks()),
			task.WithMetrics(task.NewMetrics(reg)),
		)
		memberStore := member.NewStore()
		memberTasks := member.NewTasks(memberStore)
		plugin := subscriptions.New(cfg, runner,
			billing.NewTasks(processor, cfg.PlanFamily, billing.WithCatalog(catalog)),
			subscription.NewTasks(subscription.NewStore()),
			subscriptions.WithMailer(mailer),
			subscriptions.WithLogger(log),
		)
		plugin.RegisterOnboarding(memberTasks.CreateTaskName())

		r := chi.NewRouter()
		r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, handler.AccessLog(log))
		r.Get("/health/live", httpserver.HealthHandler(log))
		r.Get("/health/ready", httpserver.HealthHandler(log,
			httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
			httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
		))
		r.Group(member.Routes(runner, memberTasks, log))
		r.Group(func(r chi.Router) {
			r.Use(member.Middleware(nil, member.StoreProvider(memberStore, pool)))
			r.Group(plugin.Routes)
		})

		srv := httpserver.New(httpCfg, log)
		srv.Handle(httpCfg.Addr, r)
		if httpCfg.MetricsAddr != "" {
			metrics := http.NewServeMux()
			metrics.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
			srv.Handle(httpCfg.MetricsAddr, metrics)
		}

		log.InfoContext(ctx, "starting subscriptions service", "addr", httpCfg.Addr, "version", Version)
		return srv.Run(ctx)
	},
}

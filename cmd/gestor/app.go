package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/gestortareas/gestor/pkg/auth"
	"github.com/gestortareas/gestor/pkg/auth/pgstore"
	"github.com/gestortareas/gestor/pkg/captcha"
	"github.com/gestortareas/gestor/pkg/config"
	"github.com/gestortareas/gestor/pkg/httpserver"
	"github.com/gestortareas/gestor/pkg/jwt"
	"github.com/gestortareas/gestor/pkg/logger"
	"github.com/gestortareas/gestor/pkg/password"
	"github.com/gestortareas/gestor/pkg/pg"
	"github.com/gestortareas/gestor/pkg/redis"
)

// services is the auth core as the transport layer consumes it.
type services struct {
	Authenticator *auth.Authenticator
	Sessions      *auth.SessionRefresher
	Social        *auth.SocialExchanger
	Captcha       *captcha.Verifier
	Sweeper       *auth.Sweeper
}

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		authCfg    auth.Config
		googleCfg  auth.GoogleConfig
		githubCfg  auth.GitHubConfig
		captchaCfg captcha.Config
		pgCfg      pg.Config
		redisCfg   redis.Config
		httpCfg    httpserver.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&authCfg) },
		func() error { return config.Load(&googleCfg) },
		func() error { return config.Load(&githubCfg) },
		func() error { return config.Load(&captchaCfg) },
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&httpCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgCfg, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	checks := map[string]httpserver.Check{"postgres": pg.Healthcheck(pool)}

	var rdb *goredis.Client
	if redisCfg.ConnectionURL != "" {
		rdb, err = redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		checks["redis"] = redis.Healthcheck(rdb)
	}

	svc, err := buildServices(log, pgstore.New(pool), rdb, authCfg, googleCfg, githubCfg, captchaCfg, redisCfg)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(log, httpCfg.ProbeTimeout, checks))

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, r) })
	g.Go(func() error { return svc.Sweeper.Start(ctx) })
	return g.Wait()
}

func buildServices(
	log *slog.Logger,
	store auth.Storage,
	rdb *goredis.Client,
	authCfg auth.Config,
	googleCfg auth.GoogleConfig,
	githubCfg auth.GitHubConfig,
	captchaCfg captcha.Config,
	redisCfg redis.Config,
) (*services, error) {
	codec, err := jwt.NewFromString(authCfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("jwt codec: %w", err)
	}
	hasher := password.NewHasher(password.WithCost(authCfg.BcryptCost))

	tokens := auth.NewRefreshTokenStore(store, auth.WithRefreshStoreLogger(log))
	issuer := auth.NewTokenIssuer(codec, tokens, authCfg.AccessTokenTTL, authCfg.RefreshTokenTTL)

	sweeperOpts := []auth.SweeperOption{
		auth.WithSweepInterval(authCfg.SweepInterval),
		auth.WithSweeperLogger(log),
	}
	if rdb != nil {
		locker := redis.NewLocker(rdb, redis.WithLockPrefix(redisCfg.LockPrefix))
		sweeperOpts = append(sweeperOpts, auth.WithSweepLocker(locker, 0))
	}

	svc := &services{
		Authenticator: auth.NewAuthenticator(store, store, hasher, issuer,
			auth.WithAuthenticatorLogger(log),
			auth.WithDefaultRole(authCfg.DefaultRole),
			auth.WithDefaultTimezone(authCfg.DefaultTimezone),
		),
		Sessions: auth.NewSessionRefresher(tokens, store, codec, issuer, auth.WithSessionLogger(log)),
		Social: auth.NewSocialExchanger(store, store, hasher, issuer,
			auth.WithSocialLogger(log),
			auth.WithSocialDefaultRole(authCfg.DefaultRole),
			auth.WithSocialDefaultTimezone(authCfg.DefaultTimezone),
			auth.WithProviders(
				auth.NewGoogleAdapter(googleCfg),
				auth.NewGitHubAdapter(githubCfg),
			),
		),
		Captcha: captcha.NewVerifier(captchaCfg, captcha.WithLogger(log)),
		Sweeper: auth.NewSweeper(tokens, sweeperOpts...),
	}

	log.Info("auth services ready",
		slog.Bool("captcha_enabled", svc.Captcha.Enabled()),
		slog.Bool("distributed_sweep", rdb != nil),
		slog.Duration("access_ttl", issuer.AccessTTL()),
		slog.Duration("refresh_ttl", issuer.RefreshTTL()),
	)
	return svc, nil
}

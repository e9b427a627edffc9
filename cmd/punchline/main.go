package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/jokehub/punchline/client"
	"github.com/jokehub/punchline/internal/config"
	"github.com/jokehub/punchline/internal/infra/database"
	"github.com/jokehub/punchline/internal/infra/repository"
	"github.com/jokehub/punchline/internal/present/rest"
	"github.com/jokehub/punchline/internal/present/rest/middleware"
	"github.com/jokehub/punchline/internal/service"
	"github.com/jokehub/punchline/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to setup tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
	}

	store := client.New(conf.Store.BaseURL, conf.Store.Timeout)

	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	profileRepo := repository.NewProfileRepository(store, mc)
	jokeRepo := repository.NewJokeRepository(store)
	commentRepo := repository.NewCommentRepository(store)
	tagRepo := repository.NewTagRepository(store)

	profileUC := usecase.NewProfileUsecase(profileRepo, jokeRepo, commentRepo)
	tagReconciler := usecase.NewTagReconciler(tagRepo, conf.Tags.Match)
	jokeUC := usecase.NewJokeUsecase(jokeRepo, profileUC, tagReconciler)
	commentUC := usecase.NewCommentUsecase(commentRepo, jokeRepo, profileUC)

	var signal *service.SignalService
	if conf.Server.RedisAddr != "" {
		rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisDB)
		signal = service.NewSignalService(rdb)
	}

	handler := rest.NewHandler(jokeUC, commentUC, profileUC, tagRepo, signal)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("punchline"))
	}
	e.Use(middleware.NewIdentityMiddleware().IdentifyRequester)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("punchline"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Error("failed to shutdown tracer provider", slog.String("error", err.Error()))
		}
	}, nil
}

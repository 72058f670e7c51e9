package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/goliatone/go-formflow/internal/authstub"
	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/internal/metrics"
	"github.com/goliatone/go-formflow/pkg/authapi"
	"github.com/goliatone/go-formflow/pkg/catalog"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/prompt"
	"github.com/goliatone/go-formflow/pkg/session"
)

func main() {
	formID := flag.String("form", catalog.SignUpID, "form to fill: signup or signin")
	configPath := flag.String("config", "", "YAML config file")
	apiURL := flag.String("api", "", "auth API base URL (overrides config)")
	stub := flag.Bool("stub", false, "serve an in-memory auth backend instead of calling -api")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	demo := flag.Bool("demo", false, "sign in as the demo user without filling the form")
	flag.Parse()

	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIBaseURL = *apiURL
			cfg.Stub = false
		case "stub":
			cfg.Stub = *stub
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := logging.New(os.Stderr, logging.Format(cfg.LogFormat), level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	baseURL := cfg.APIBaseURL
	if cfg.Stub {
		addr, shutdown, err := serve("127.0.0.1:0", authstub.New(authstub.WithDemoUser()).Handler())
		if err != nil {
			log.Fatalf("Failed to start auth stub: %v", err)
		}
		defer shutdown()
		baseURL = "http://" + addr
		logger.Info("auth stub listening", slog.String("addr", addr))
	}

	client, err := authapi.New(ctx, baseURL, authapi.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	if err != nil {
		log.Fatalf("Failed to create auth client: %v", err)
	}

	hooks := []session.Hook{logging.SessionHook(logger)}
	if cfg.MetricsAddr != "" {
		collectors := metrics.New()
		mux := http.NewServeMux()
		mux.Handle("/metrics", collectors.Handler())
		addr, shutdown, err := serve(cfg.MetricsAddr, mux)
		if err != nil {
			log.Fatalf("Failed to start metrics server: %v", err)
		}
		defer shutdown()
		hooks = append(hooks, collectors.Hook())
		logger.Info("metrics listening", slog.String("addr", addr))
	}

	form, submitter, err := buildForm(cfg, *formID, client)
	if err != nil {
		log.Fatalf("Failed to build form: %v", err)
	}

	sess, err := session.New(form, submitter,
		session.WithHooks(hooks...),
		session.WithAuth(client.Snapshot()),
	)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	if *demo {
		snap, err := client.Login(ctx, catalog.DemoLogin())
		if err != nil {
			log.Fatalf("Demo sign in failed: %v", err)
		}
		sess.ObserveAuth(snap)
	} else if _, err := prompt.New().Run(ctx, sess); err != nil {
		if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
			fmt.Println("Aborted.")
			os.Exit(130)
		}
		log.Fatalf("Form failed: %v", err)
	}

	if dest, ok := sess.Decision().Redirect(); ok {
		fmt.Printf("Signed in as %s. Redirecting to %s\n", sess.Auth().Role, dest.Path())
		return
	}
	fmt.Println("Still on the form.")
}

func buildForm(cfg config.Config, formID string, client *authapi.Client) (model.Form, session.Submitter, error) {
	var (
		form model.Form
		err  error
	)
	switch {
	case cfg.CatalogFile != "":
		data, readErr := os.ReadFile(cfg.CatalogFile)
		if readErr != nil {
			return model.Form{}, nil, readErr
		}
		form, err = catalog.NewLoader().Parse(data)
	case formID == catalog.SignInID:
		form, err = catalog.SignIn()
	case formID == catalog.SignUpID:
		form, err = catalog.SignUp(catalog.Options{Locations: cfg.Locations, ServiceTypes: cfg.ServiceTypes})
	default:
		return model.Form{}, nil, fmt.Errorf("unknown form %q", formID)
	}
	if err != nil {
		return model.Form{}, nil, err
	}

	if form.ID() == catalog.SignInID {
		return form, client.Authentication(), nil
	}
	return form, client.Registration(), nil
}

func serve(addr string, handler http.Handler) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.Serve(ln)
	}()
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return ln.Addr().String(), shutdown, nil
}

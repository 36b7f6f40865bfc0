package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"sakhi-cloud/internal/alerting/notify"
	"sakhi-cloud/internal/alertlog"
	"sakhi-cloud/internal/auth"
	"sakhi-cloud/internal/observability/metrics"
	"sakhi-cloud/internal/sos"
	subjects "sakhi-cloud/internal/subjects/domain"
	sweepapp "sakhi-cloud/internal/sweep/application"
	sweephttp "sakhi-cloud/internal/sweep/interfaces/http"
	sweepmetrics "sakhi-cloud/internal/sweep/metrics"
	subjectmemory "sakhi-cloud/internal/subjects/infrastructure/memory"
	subjectpostgres "sakhi-cloud/internal/subjects/infrastructure/postgres"
	subjecthttp "sakhi-cloud/internal/subjects/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	sweepCfg, err := sweepapp.LoadConfig()
	if err != nil {
		logger.Fatalf("sweep config error: %v", err)
	}

	var (
		subjectStore subjectRepository
		recorder     alertlog.Recorder
		lister       alertlog.Lister
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		metrics.Init(db, logger)

		subjectStore = subjectpostgres.NewSubjectRepository(db)
		events := alertlog.NewRepository(db)
		recorder, lister = events, events
	} else {
		// Single-process mode for local runs: state lives in memory
		// and is lost on restart.
		logger.Printf("no DATABASE_URL set, using in-memory stores")
		metrics.Init(nil, logger)

		subjectStore = subjectmemory.NewSubjectRepository()
		events := alertlog.NewMemoryStore()
		recorder, lister = events, events
	}

	var channels []notify.Channel
	if sweepCfg.Push.BaseURL != "" {
		push, err := notify.NewPushChannel(sweepCfg.Push.BaseURL, notify.WithCountryCode(sweepCfg.Push.CountryCode))
		if err != nil {
			logger.Fatalf("push channel error: %v", err)
		}
		channels = append(channels, push)
	}
	if sweepCfg.Email.Endpoint != "" {
		email, err := notify.NewEmailChannel(sweepCfg.Email.Endpoint, sweepCfg.Email.Sender, notify.WithEmailAPIKey(sweepCfg.Email.APIKey))
		if err != nil {
			logger.Fatalf("email channel error: %v", err)
		}
		channels = append(channels, email)
	}
	dispatcher := notify.NewDispatcher(channels,
		notify.WithSendTimeout(sweepCfg.DispatchTimeout()),
		notify.WithMaxInFlight(sweepCfg.MaxInFlight),
	)

	sweepService, err := sweepapp.NewService(subjectStore, dispatcher, logger,
		sweepapp.WithRecorder(recorder),
		sweepapp.WithMetrics(sweepmetrics.New()),
	)
	if err != nil {
		logger.Fatalf("sweep service error: %v", err)
	}
	sweepHandler, err := sweephttp.NewHandler(sweepService, []byte(cfg.CronSecret))
	if err != nil {
		logger.Fatalf("sweep handler error: %v", err)
	}
	if interval := sweepCfg.InternalInterval(); interval > 0 {
		scheduler := sweepapp.NewScheduler(sweepService, interval, logger)
		go scheduler.Start(context.Background())
		logger.Printf("internal sweep scheduler every %s", interval)
	}

	profileHandler, err := subjecthttp.NewHandler(subjectStore, recorder)
	if err != nil {
		logger.Fatalf("profile handler error: %v", err)
	}
	sosHandler, err := sos.NewHandler(subjectStore, sweepCfg.Push.CountryCode)
	if err != nil {
		logger.Fatalf("sos handler error: %v", err)
	}
	alertsHandler := alertlog.NewHandler(lister)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/internal/cron/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/internal/cron/sweep", sweepHandler)
	mux.Handle("/api/v1/profile", profileHandler)
	mux.Handle("/api/v1/profile/", profileHandler)
	mux.Handle("/api/v1/sos", sosHandler)
	mux.Handle("/api/v1/alerts", alertsHandler)
	mux.Handle("/api/v1/exports/alerts.csv", alertsHandler)
	mux.Handle("/api/v1/exports/alerts.xlsx", alertsHandler)
	mux.Handle("/api/v1/exports/alerts.pdf", alertsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

// subjectRepository is the full store surface main wires: the client
// API methods plus the sweep's armed listing. Both the Postgres and
// the in-memory repository satisfy it.
type subjectRepository interface {
	subjecthttp.Store
	ListArmed(ctx context.Context) ([]subjects.Subject, error)
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
	CronSecret  string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		CronSecret:  getenvDefault("CRON_SECRET", ""),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	if cfg.CronSecret == "" {
		log.Fatal("CRON_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		metrics.ObserveRequest(r.URL.Path, resp.status, time.Since(start))
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

package app

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabayhq/gabay-backend/internal/assistant"
	"github.com/gabayhq/gabay-backend/internal/eventlog"
	"github.com/gabayhq/gabay-backend/internal/httpapi"
	"github.com/gabayhq/gabay-backend/internal/nlp"
	"github.com/gabayhq/gabay-backend/internal/nls"
	"github.com/gabayhq/gabay-backend/internal/notifications"
	"github.com/gabayhq/gabay-backend/internal/ocr"
	"github.com/gabayhq/gabay-backend/internal/recognition"
	"github.com/gabayhq/gabay-backend/internal/simulation"
	"github.com/gabayhq/gabay-backend/internal/store"
	"github.com/gabayhq/gabay-backend/internal/synthesis"
	"github.com/gabayhq/gabay-backend/internal/voiceauth"
)

// App owns the wiring: database, stores, cloud clients (real or simulated,
// chosen once at startup) and the command pipeline.
type App struct {
	cfg        Config
	logger     *log.Logger
	db         *pgxpool.Pool
	store      *store.Store
	eventLog   *eventlog.Logger
	httpClient *http.Client // shared client with connection pooling for the cloud gateways

	recognizer recognition.Client
	analyzer   nlp.Client
	synth      synthesis.Client
	ocr        ocr.Client
	voiceAuth  voiceauth.Client
	pipeline   *assistant.Pipeline

	apns    *notifications.APNsClient
	discord *notifications.Discord
}

func New(cfg Config, logger *log.Logger) (*App, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := store.New(db)
	el := eventlog.New(db)

	// Migrations are applied externally by the CI deploy job (docker exec psql).
	// No automatic migration runner at startup.

	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		db.Close()
		return nil, err
	}

	// Shared HTTP client with connection pooling. The gateways sit behind a
	// small set of hosts, so keeping connections alive cuts per-command latency.
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		store:      s,
		eventLog:   el,
		httpClient: httpClient,
	}
	a.buildClients()

	a.pipeline = assistant.NewPipeline(a.recognizer, a.analyzer, a.synth, el, logger)

	apns, err := notifications.NewAPNsClient(notifications.APNsConfig{
		KeyPath:    cfg.APNsKeyPath,
		KeyID:      cfg.APNsKeyID,
		TeamID:     cfg.APNsTeamID,
		BundleID:   cfg.APNsBundleID,
		Production: cfg.APNsProduction,
	}, logger)
	if err != nil {
		logger.Printf("APNs client disabled: %v", err)
	}
	a.apns = apns
	a.discord = notifications.NewDiscord(cfg.DiscordWebhookURL, logger)

	return a, nil
}

// buildClients picks the real Alibaba clients or the simulated ones. The
// choice is made once here; everything downstream sees only the interfaces.
func (a *App) buildClients() {
	cfg := a.cfg
	if cfg.UseRealAPIs {
		tokens := nls.NewTokenClient(nls.TokenConfig{
			Endpoint:        cfg.NLSTokenEndpoint,
			AccessKeyID:     cfg.AlibabaAccessKeyID,
			AccessKeySecret: cfg.AlibabaAccessKeySecret,
			StaticToken:     cfg.AlibabaNLSToken,
			HTTPClient:      a.httpClient,
		})
		a.recognizer = recognition.NewAlibabaClient(recognition.AlibabaConfig{
			Endpoint:   cfg.ASREndpoint,
			AppKey:     cfg.AlibabaNLSAppKey,
			Tokens:     tokens,
			HTTPClient: a.httpClient,
		})
		a.analyzer = nlp.NewAlibabaClient(nlp.AlibabaConfig{
			Endpoint:        cfg.NLPEndpoint,
			AccessKeyID:     cfg.AlibabaAccessKeyID,
			AccessKeySecret: cfg.AlibabaAccessKeySecret,
			HTTPClient:      a.httpClient,
		})
		a.synth = synthesis.NewAlibabaClient(synthesis.AlibabaConfig{
			Endpoint:   cfg.TTSEndpoint,
			AppKey:     cfg.AlibabaNLSAppKey,
			Tokens:     tokens,
			MediaDir:   cfg.MediaDir,
			HTTPClient: a.httpClient,
		})
		a.ocr = ocr.NewAlibabaClient(ocr.AlibabaConfig{
			Endpoint:        cfg.OCREndpoint,
			AccessKeyID:     cfg.AlibabaAccessKeyID,
			AccessKeySecret: cfg.AlibabaAccessKeySecret,
			HTTPClient:      a.httpClient,
		})
		a.voiceAuth = voiceauth.NewAlibabaClient(voiceauth.AlibabaConfig{
			Endpoint:     cfg.VoiceEndpoint,
			AuthEndpoint: cfg.VoiceAuthEndpoint,
			ClientID:     cfg.AlibabaAccessKeyID,
			ClientSecret: cfg.AlibabaAccessKeySecret,
			HTTPClient:   a.httpClient,
		})
		a.logger.Println("cloud clients: using Alibaba endpoints")
		return
	}

	sim := simulation.NewConfig(cfg.SimulationDelay, cfg.SimulationSuccessRate)
	a.recognizer = recognition.NewSimulatedClient(sim)
	a.analyzer = nlp.NewSimulatedClient(sim)
	a.synth = synthesis.NewSimulatedClient(sim, cfg.MediaDir)
	a.ocr = ocr.NewSimulatedClient(sim)
	a.voiceAuth = voiceauth.NewSimulatedClient(sim)
	a.logger.Printf("cloud clients: simulated (delay=%v, success rate=%.2f)", cfg.SimulationDelay, cfg.SimulationSuccessRate)
}

func (a *App) Router() http.Handler {
	routerCfg := httpapi.RouterConfig{
		JWTSecret: a.cfg.JWTSecret,
		JWTExpiry: a.cfg.JWTExpiry,
		MediaDir:  a.cfg.MediaDir,
	}
	deps := httpapi.Deps{
		Store:     a.store,
		Events:    a.eventLog,
		Pipeline:  a.pipeline,
		OCR:       a.ocr,
		Synth:     a.synth,
		VoiceAuth: a.voiceAuth,
		APNs:      a.apns,
		Discord:   a.discord,
	}
	return httpapi.NewRouter(routerCfg, a.logger, deps)
}

func (a *App) Close() error {
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

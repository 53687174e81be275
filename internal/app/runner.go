package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/roy/internal/config"
	"github.com/samvad-hq/roy/internal/logger"
	"github.com/samvad-hq/roy/internal/storage"
	"github.com/samvad-hq/roy/pkg/profiles"
	"github.com/samvad-hq/roy/pkg/roy"
)

// Call is one request issued from the command line.
type Call struct {
	Method   roy.RequestMethod
	Endpoint string
	// Data is sent as the JSON body for POST/PUT/PATCH. Nil defaults to "".
	Data any
	// Single asks for one object instead of a collection (GET only).
	Single bool
	// Absolute treats Endpoint as a full URL (GET only).
	Absolute bool
}

// Result is what came back from a Call.
type Result struct {
	Present bool
	Status  int
	Body    []byte
}

// Runner wires the client, history store and logger together.
type Runner struct {
	cfg    *config.Config
	client *roy.Client
	store  storage.Store
	log    logger.Logger
}

// NewRunner builds a runner from config. extra options are appended to the
// client options, mainly so tests can inject a transport.
func NewRunner(cfg *config.Config, log logger.Logger, extra ...roy.Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	client, err := buildClient(cfg, log, extra)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.HistoryType, cfg.HistoryPath, storage.Options{
		EntryTTL:        cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init history storage: %w", err)
	}
	log.DebugObj("history storage initialized", "storage_config", map[string]any{
		"type":                     cfg.HistoryType,
		"path":                     cfg.HistoryPath,
		"entry_ttl_seconds":        int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	return &Runner{
		cfg:    cfg,
		client: client,
		store:  store,
		log:    log,
	}, nil
}

func buildClient(cfg *config.Config, log logger.Logger, extra []roy.Option) (*roy.Client, error) {
	base := []roy.Option{roy.WithLogger(log)}
	if logger.S != nil {
		base = append(base, roy.WithTransportLogger(logger.S))
	}

	if id := strings.TrimSpace(cfg.Profile); id != "" {
		reg, err := profiles.LoadRegistry(cfg.ProfilesFile)
		if err != nil {
			return nil, fmt.Errorf("load profiles registry: %w", err)
		}
		p, ok := reg.ByID(id)
		if !ok {
			return nil, fmt.Errorf("profile %q not found in %s", id, cfg.ProfilesFile)
		}
		if p.TimeoutSeconds == 0 && cfg.RequestTimeout > 0 {
			base = append(base, roy.WithTimeout(cfg.RequestTimeout))
		}
		log.DebugObj("profile selected", "profile", map[string]any{
			"id":       p.ID,
			"base_url": p.BaseURL,
			"auth":     p.Token != "",
		})
		return profiles.NewClient(p, append(base, extra...)...), nil
	}

	opts := append(base, roy.WithTimeout(cfg.RequestTimeout))
	opts = append(opts, extra...)
	if cfg.AuthToken != "" {
		return roy.NewAuth(cfg.BaseURL, cfg.AuthToken, opts...), nil
	}
	return roy.New(cfg.BaseURL, opts...), nil
}

// Client exposes the configured client.
func (r *Runner) Client() *roy.Client { return r.client }

// Do executes the call and records it in history. A missing response is not
// an error; Result.Present reports it. History failures are logged only.
func (r *Runner) Do(ctx context.Context, call Call) (Result, error) {
	if r == nil || r.client == nil {
		return Result{}, fmt.Errorf("runner is not initialized")
	}
	if call.Absolute && call.Method != roy.GET {
		return Result{}, fmt.Errorf("absolute urls are only supported for GET")
	}
	if call.Single && call.Method != roy.GET {
		return Result{}, fmt.Errorf("single object requests are only supported for GET")
	}

	url := r.client.FormatURL(call.Endpoint)
	start := time.Now()

	var resp roy.Response
	switch {
	case call.Absolute:
		url = call.Endpoint
		resp = r.client.GetAbs(ctx, url, call.Single)
	case call.Method == roy.GET:
		resp = r.client.Get(ctx, call.Endpoint, call.Single)
	default:
		resp = r.client.Request(ctx, call.Endpoint, call.Method, call.Data)
	}

	res := Result{Present: resp != nil}
	if resp != nil {
		res.Status = resp.StatusCode()
		res.Body = resp.Body()
	}

	entry := storage.Entry{
		Method:    call.Method.String(),
		URL:       url,
		Status:    res.Status,
		Present:   res.Present,
		ElapsedMS: time.Since(start).Milliseconds(),
		At:        start.UTC(),
	}
	if err := r.store.Record(entry); err != nil {
		r.log.WarnObj("history record failed", "error", err.Error())
	}
	r.log.InfoObj("request finished", "request_meta", entry)

	return res, nil
}

// History returns recent calls, newest first.
func (r *Runner) History(limit int) ([]storage.Entry, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}
	return r.store.Recent(limit)
}

// Close releases the history store.
func (r *Runner) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Close()
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/dashboard/datasource/fixture"
	"github.com/Abraxas-365/talentdesk/dashboard/datasource/remote"
	"github.com/Abraxas-365/talentdesk/dashboard/query"
	"github.com/Abraxas-365/talentdesk/dashboard/session"
	"github.com/Abraxas-365/talentdesk/internal/config"
	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/prefstore"
	"github.com/Abraxas-365/talentdesk/pkg/querycache"
)

// app is the composition root shared by every command
type app struct {
	cfg     *config.CLIConfig
	prefs   prefstore.Store
	session *session.Manager
	source  datasource.Source
	queries *query.Queries

	cache   *querycache.Cache
	backend *fixture.Backend

	out io.Writer
	err io.Writer
}

func newApp(ctx context.Context, cfg *config.CLIConfig, out, errOut io.Writer) (*app, error) {
	prefs, err := prefstore.OpenFileStore(cfg.PrefsPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, prefs: prefs, out: out, err: errOut}
	tokens := session.NewTokens(prefs)

	// 1. HTTP client, in-process for the fixture backend
	baseURL := cfg.BaseURL
	var httpClient *http.Client
	switch cfg.DataSource {
	case config.SourceFixture:
		a.backend, err = fixture.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("start fixture backend: %w", err)
		}
		baseURL = fixture.BaseURL
		httpClient = a.backend.HTTPClient()
	case config.SourceRemote:
	default:
		return nil, datasource.ErrUnknownSource(cfg.DataSource)
	}

	api := apiclient.New(apiclient.Config{
		BaseURL:    baseURL,
		Timeout:    cfg.Timeout,
		Tokens:     tokens,
		HTTPClient: httpClient,
		OnUnauthorized: func() {
			fmt.Fprintln(a.err, "Your session has expired. Run `atsctl login` to sign in again.")
		},
	})

	// 2. Data source, session and queries
	if a.backend != nil {
		a.source = a.backend.Source(api, tokens)
	} else {
		a.source = remote.New(api)
	}
	a.session = session.New(tokens, a.source)
	a.cache = querycache.New()
	a.queries = query.New(a.cache, a.source)
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.backend != nil {
		_ = a.backend.Close()
	}
}

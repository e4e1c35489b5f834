package resolver

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"streamgate/internal/convert"
	apperrors "streamgate/internal/errors"
	"streamgate/internal/logger"
	"streamgate/internal/metrics"
	"streamgate/internal/models"
)

// vixHosts get the single-hop mediaflow extractor fastpath instead of an
// external script.
var vixHosts = map[string]bool{
	"vixsrc.to":     true,
	"www.vixsrc.to": true,
	"vixsrl.to":     true,
	"www.vixsrl.to": true,
}

// SettingsSource provides the runtime settings the resolver depends on
type SettingsSource interface {
	Settings() models.Settings
}

// Service resolves an opaque upstream URL into a final playable stream
// URL, dispatching between the mediaflow fastpath, registered external
// scripts and pass-through.
type Service struct {
	adapter  *Adapter
	registry *Registry
	settings SettingsSource
	proxyURL string
	logger   *logger.Logger
}

// NewService creates a resolver service
func NewService(adapter *Adapter, registry *Registry, settings SettingsSource, proxyURL string) *Service {
	return &Service{
		adapter:  adapter,
		registry: registry,
		settings: settings,
		proxyURL: proxyURL,
		logger:   logger.AppLogger(),
	}
}

// wrapProxy routes a resolved URL through the media-flow relay when asked
func (s *Service) wrapProxy(rawURL string, enabled bool) string {
	if enabled && s.proxyURL != "" {
		return strings.TrimRight(s.proxyURL, "/") + "/fetch?target=" + url.QueryEscape(rawURL)
	}
	return rawURL
}

// Resolve turns an upstream URL into its final form. kind is "tv" or
// "video" and is forwarded to the resolver script.
func (s *Service) Resolve(ctx context.Context, rawURL, kind string, headers map[string]string, useProxy bool) (*Result, error) {
	host := parseHost(rawURL)

	if vixHosts[host] {
		redirect, err := s.vixRedirect(rawURL)
		if err != nil {
			return nil, err
		}
		metrics.ResolverRuns.WithLabelValues("fastpath").Inc()
		return &Result{
			OK:          true,
			ResolvedURL: redirect,
			Meta:        map[string]interface{}{"resolver": "MediaFlow.VixCloud"},
		}, nil
	}

	script, ok := s.registry.ScriptFor(host)
	if !ok {
		s.logger.WithFields(map[string]interface{}{
			"host": host,
		}).Debug("no resolver registered, passing through")
		// No resolver for this domain: pass the URL through untouched
		return &Result{
			OK:          true,
			Type:        "unknown",
			ResolvedURL: s.wrapProxy(rawURL, useProxy),
			Headers:     headers,
			Meta:        map[string]interface{}{"resolver": nil, "note": "no_resolver_for_domain"},
		}, nil
	}

	result, err := s.adapter.Run(ctx, script, rawURL, kind, headers)
	if err != nil {
		metrics.ResolverRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	result.ResolvedURL = s.wrapProxy(result.ResolvedURL, useProxy)
	if result.Meta == nil {
		result.Meta = map[string]interface{}{}
	}
	result.Meta["resolver"] = filepath.Base(script)
	metrics.ResolverRuns.WithLabelValues("ok").Inc()
	return result, nil
}

// vixRedirect builds the single-hop mediaflow extractor URL
func (s *Service) vixRedirect(rawURL string) (string, error) {
	settings := s.settings.Settings()
	mflow := strings.TrimRight(convert.EnsureHTTP(settings.MediaflowURL), "/")
	password := settings.APIPassword
	if mflow == "" || password == "" {
		return "", apperrors.ValidationError("mediaflow_url and api_password must be configured")
	}
	return mflow + "/extractor/video?host=VixCloud&redirect_stream=true" +
		"&api_password=" + url.QueryEscape(password) +
		"&d=" + url.QueryEscape(rawURL), nil
}

func parseHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

package appearance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-fitspire/theme"
	"go.uber.org/zap"
)

var errCorruptPreference = errors.New("appearance: stored preference is not light, dark or system")

type resolution struct {
	scheme     theme.Scheme
	preference theme.Preference
	source     Source
}

type localReading struct {
	preference theme.Preference
	found      bool
	raw        string
	err        error
}

// readLocal loads the persisted preference. Corrupt values are reported as
// absent with errCorruptPreference so callers can trace them.
func (r *Resolver) readLocal(ctx context.Context) localReading {
	raw, ok, err := r.store.Get(ctx, r.cfg.key)
	if err != nil {
		return localReading{err: err}
	}
	if !ok {
		return localReading{}
	}
	pref, valid := theme.ParsePreference(raw)
	if !valid {
		return localReading{raw: raw, err: errCorruptPreference}
	}
	return localReading{preference: pref, found: true, raw: raw}
}

func (r *Resolver) bootstrap(ctx context.Context) (resolution, Trace) {
	trace := newTrace()
	finish := func(res resolution) (resolution, Trace) {
		trace.Scheme = res.scheme
		trace.Source = res.source
		return res, trace
	}

	local := r.readLocal(ctx)
	layer := trace.layer(SourceLocal)
	layer.Consulted = true
	layer.Found = local.found
	layer.Value = local.raw
	if local.err != nil {
		layer.Error = local.err.Error()
		r.logger.Warn("ignoring local scheme preference", zap.Error(local.err))
	}
	if scheme, ok := local.preference.Concrete(); ok {
		return finish(resolution{scheme: scheme, preference: local.preference, source: SourceLocal})
	}

	followSystem := local.found && local.preference == theme.PreferenceSystem
	if !followSystem && r.cfg.remote != nil {
		layer := trace.layer(SourceRemote)
		layer.Consulted = true
		dark, err := r.fetchRemote(ctx)
		if err == nil {
			scheme := theme.SchemeFromDarkMode(dark)
			pref := theme.PreferenceFor(scheme)
			layer.Found = true
			layer.Value = strconv.FormatBool(dark)
			if err := r.store.Set(ctx, r.cfg.key, string(pref)); err != nil {
				r.logger.Warn("caching remote scheme preference failed", zap.Error(err))
			}
			return finish(resolution{scheme: scheme, preference: pref, source: SourceRemote})
		}
		layer.Error = err.Error()
		r.logger.Warn("remote scheme preference unavailable", zap.Error(err))
	}

	var pref theme.Preference
	if followSystem {
		pref = theme.PreferenceSystem
	}

	if r.cfg.system != nil {
		layer := trace.layer(SourceSystem)
		layer.Consulted = true
		if scheme, ok := r.cfg.system.Current(); ok && scheme.Valid() {
			layer.Found = true
			layer.Value = string(scheme)
			return finish(resolution{scheme: scheme, preference: pref, source: SourceSystem})
		}
	}

	layer = trace.layer(SourceDefault)
	layer.Consulted = true
	layer.Found = true
	layer.Value = string(theme.SchemeLight)
	return finish(resolution{scheme: theme.SchemeLight, preference: pref, source: SourceDefault})
}

// fetchRemote bounds the backend read by the bootstrap timeout even when the
// Remote ignores its context.
func (r *Resolver) fetchRemote(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.bootstrapTimeout)
	defer cancel()

	type outcome struct {
		dark bool
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("appearance: remote fetch panicked: %v", rec)}
			}
		}()
		dark, err := r.cfg.remote.FetchDarkMode(ctx)
		done <- outcome{dark: dark, err: err}
	}()

	select {
	case res := <-done:
		return res.dark, res.err
	case <-ctx.Done():
		return false, fmt.Errorf("appearance: remote fetch: %w", ctx.Err())
	}
}

package appearance

import (
	"context"

	"github.com/goliatone/go-fitspire/theme"
	"go.uber.org/zap"
)

func (r *Resolver) onSystemChange(scheme theme.Scheme, ok bool) {
	reading := systemReading{scheme: scheme, ok: ok}
	if r.State() != StateReady {
		r.mu.Lock()
		if r.State() != StateReady {
			r.pendingSystem = &reading
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
	r.handleSystemChange(reading)
}

// handleSystemChange adopts the OS appearance unless a concrete preference is
// in effect. A non-empty in-memory preference is authoritative; the store is
// only trusted when nothing is known in memory.
func (r *Resolver) handleSystemChange(reading systemReading) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.writeTimeout)
	local := r.readLocal(ctx)
	cancel()
	if local.err != nil {
		r.logger.Debug("system change: local preference unreadable, using in-memory", zap.Error(local.err))
	}

	scheme := theme.SchemeLight
	if reading.ok && reading.scheme.Valid() {
		scheme = reading.scheme
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	cur := r.current.Load()
	if explicitPreference(cur.Preference, local) {
		r.mu.Unlock()
		r.logger.Debug("system change ignored, explicit preference in effect",
			zap.String("preference", string(cur.Preference)),
			zap.String("system", string(scheme)),
		)
		return
	}
	from := cur.Scheme
	snap, changed, schemeChanged := r.applyLocked(scheme, cur.Preference, SourceSystemChange)
	r.mu.Unlock()

	if changed {
		r.logger.Info("following system appearance", zap.String("scheme", string(scheme)))
		r.publish(snap)
	}
	if schemeChanged {
		r.emitChange(context.Background(), from, snap)
	}
}

// explicitPreference reports whether an OS change must be ignored. A non-empty
// in-memory preference decides alone; the store is consulted only when it is empty.
func explicitPreference(inMemory theme.Preference, local localReading) bool {
	if inMemory != "" {
		_, ok := inMemory.Concrete()
		return ok
	}
	if local.err != nil || !local.found {
		return false
	}
	_, ok := local.preference.Concrete()
	return ok
}

package settings

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"usersettings/internal/pkg/logx"
)

// State is the fetch lifecycle of a Store.
type State int

const (
	// StateUninitialized means the initial fetch has not been issued yet.
	// Only a store created WithManualStart is seen in this state.
	StateUninitialized State = iota
	// StateLoading means the initial fetch is outstanding.
	StateLoading
	// StateReady means the initial fetch resolved, successfully or not.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Snapshot is an immutable view of a Store at one point in time.
//
// A failed initial load is State == StateReady with FetchErr != nil; "no data yet"
// is any State before StateReady.
type Snapshot struct {
	Settings   UserSettings
	State      State
	Loading    bool
	Refreshing bool
	Saving     bool
	Uploading  bool
	FetchErr   error
	SaveErr    error
	UploadErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithManualStart defers the initial fetch until Start or Refetch is called.
func WithManualStart() Option {
	return func(s *Store) {
		s.manualStart = true
	}
}

// WithRequestTimeout bounds every remote call issued by the store.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// Store owns the current UserSettings of one user and synchronizes it with the
// settings service. Every operation returns without waiting for the network;
// results become visible through Snapshot and Subscribe.
type Store struct {
	remote      RemoteClient
	logger      zerolog.Logger
	timeout     time.Duration
	manualStart bool

	// base context of every remote call, canceled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	ready     chan struct{}

	// mu guards every field below.
	mu        sync.RWMutex
	settings  UserSettings
	state     State
	fetching  bool
	saving    int
	uploading int
	fetchErr  error
	saveErr   error
	uploadErr error
	closed    bool

	// seq orders snapshots handed to observers.
	seq       atomic.Uint64
	obsMu     sync.Mutex
	observers map[int]*observer
	nextObsID int
}

// New creates a Store and issues the initial fetch, so the store is already
// Loading when New returns. With WithManualStart the store stays in
// StateUninitialized until Start is called.
func New(remote RemoteClient, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		remote:    remote,
		logger:    logx.Component("settings_store"),
		ctx:       ctx,
		cancel:    cancel,
		ready:     make(chan struct{}),
		observers: make(map[int]*observer),
	}

	for _, opt := range opts {
		opt(s)
	}

	if !s.manualStart {
		s.Start()
	}

	return s
}

// Start issues the initial fetch of a store created WithManualStart.
// Only the first call has an effect; for any other store it is a no-op.
func (s *Store) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.state = StateLoading
		s.fetching = true
		s.mu.Unlock()

		s.logger.Debug().Msg("Initial settings fetch started")
		s.notify()

		go s.fetch(true)
	})
}

// Refetch re-reads the settings from the service, for caller-driven retry.
// On a WithManualStart store that was never started it behaves like Start;
// while any fetch is in flight it does nothing.
func (s *Store) Refetch() {
	s.mu.Lock()
	if s.state == StateUninitialized {
		s.mu.Unlock()
		s.Start()
		return
	}
	if s.closed || s.fetching {
		s.mu.Unlock()
		return
	}
	s.fetching = true
	s.mu.Unlock()

	s.logger.Debug().Msg("Settings refetch started")
	s.notify()

	go s.fetch(false)
}

func (s *Store) fetch(initial bool) {
	ctx, cancel := s.requestContext()
	defer cancel()

	var fetched UserSettings
	err := s.remote.Do(ctx, Request{Method: http.MethodGet, Path: PathSettings}, &fetched)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.fetching = false
	if err != nil {
		s.fetchErr = fmt.Errorf("%w: %w", ErrFetch, err)
	} else {
		s.settings = fetched.WithoutCredentials()
		s.fetchErr = nil
	}

	if initial {
		s.state = StateReady
		close(s.ready)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Bool("initial", initial).Msg("Settings fetch failed")
	} else {
		s.logger.Debug().Bool("initial", initial).Msg("Settings fetched")
	}

	s.notify()
}

// WaitReady blocks until the initial fetch resolves, ctx is done or the store is
// closed. It returns the fetch failure, if any.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.fetchErr
	case <-s.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// Loading reports whether the initial fetch is outstanding.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state == StateLoading
}

// State returns the fetch lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Snapshot returns the full observable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Settings:   s.settings,
		State:      s.state,
		Loading:    s.state == StateLoading,
		Refreshing: s.fetching && s.state == StateReady,
		Saving:     s.saving > 0,
		Uploading:  s.uploading > 0,
		FetchErr:   s.fetchErr,
		SaveErr:    s.saveErr,
		UploadErr:  s.uploadErr,
	}
}

// SetSettings replaces the local settings. No remote call is made.
func (s *Store) SetSettings(next UserSettings) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.settings = next
	s.mu.Unlock()

	s.notify()
}

// SaveSettings persists the local draft with p applied on top of it.
//
// The merged draft is captured when SaveSettings is called and sent in full, so an
// empty patch saves every local edit made through SetSettings. The local settings
// are not touched until the service answers; on success they are replaced by the
// service's response, on failure they stay as they were and SaveErr is recorded.
//
// The returned channel yields the outcome once and is then closed.
func (s *Store) SaveSettings(p Patch) <-chan error {
	done := make(chan error, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- ErrClosed
		close(done)
		return done
	}
	body := p.Apply(s.settings)
	s.saving++
	s.mu.Unlock()

	s.notify()

	go func() {
		defer close(done)

		ctx, cancel := s.requestContext()
		defer cancel()

		var persisted UserSettings
		err := s.remote.Do(ctx, Request{Method: http.MethodPost, Path: PathUpdate, Body: body}, &persisted)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrSave, err)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			done <- ErrClosed
			return
		}
		s.saving--
		if err != nil {
			s.saveErr = err
		} else {
			s.settings = persisted.WithoutCredentials()
			s.saveErr = nil
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn().Err(err).Msg("Settings save failed")
		} else {
			s.logger.Debug().Msg("Settings saved")
		}

		s.notify()
		done <- err
	}()

	return done
}

// UploadAvatar sends file to the avatar endpoint. On success only the avatar field
// changes, to the reference returned by the service. On failure nothing changes
// and UploadErr is recorded.
//
// The returned channel yields the outcome once and is then closed.
func (s *Store) UploadAvatar(file AvatarFile) <-chan error {
	done := make(chan error, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- ErrClosed
		close(done)
		return done
	}
	s.uploading++
	s.mu.Unlock()

	s.notify()

	go func() {
		defer close(done)

		ctx, cancel := s.requestContext()
		defer cancel()

		var uploaded AvatarResponse
		err := s.remote.Do(ctx, Request{Method: http.MethodPost, Path: PathAvatar, File: &file}, &uploaded)
		if err == nil && uploaded.AvatarURL == "" {
			err = ErrEmptyAvatarURL
		}
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrUpload, err)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			done <- ErrClosed
			return
		}
		s.uploading--
		if err != nil {
			s.uploadErr = err
		} else {
			s.settings.Avatar = uploaded.AvatarURL
			s.uploadErr = nil
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn().Err(err).Str("file_name", file.Name).Msg("Avatar upload failed")
		} else {
			s.logger.Debug().Str("avatar", uploaded.AvatarURL).Msg("Avatar uploaded")
		}

		s.notify()
		done <- err
	}()

	return done
}

// Subscribe registers fn to receive a Snapshot after every state change.
// Calls to one observer never overlap and arrive in the order the snapshots
// were taken; when fn is slow, intermediate snapshots are skipped so that the
// last call always carries the newest state.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	obs := &observer{fn: fn}

	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = obs
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
		obs.stop()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	snap := s.snapshotLocked()
	seq := s.seq.Add(1)
	s.mu.RUnlock()

	s.obsMu.Lock()
	observers := make([]*observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.obsMu.Unlock()

	for _, obs := range observers {
		obs.deliver(seq, snap)
	}
}

// observer serializes delivery to one subscriber. A snapshot arriving while
// fn runs is parked and delivered by the goroutine already running fn; only
// the newest parked snapshot is kept.
type observer struct {
	fn func(Snapshot)

	mu         sync.Mutex
	pending    Snapshot
	pendingSeq uint64
	lastSeq    uint64
	delivering bool
	stopped    bool
}

func (o *observer) deliver(seq uint64, snap Snapshot) {
	o.mu.Lock()
	if o.stopped || seq <= o.lastSeq || seq <= o.pendingSeq {
		o.mu.Unlock()
		return
	}
	o.pending, o.pendingSeq = snap, seq
	if o.delivering {
		o.mu.Unlock()
		return
	}
	o.delivering = true

	for !o.stopped && o.pendingSeq > o.lastSeq {
		next := o.pending
		o.lastSeq = o.pendingSeq
		o.mu.Unlock()

		o.fn(next)

		o.mu.Lock()
	}
	o.delivering = false
	o.mu.Unlock()
}

func (o *observer) stop() {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()
}

// Close discards the store. Responses arriving afterwards are not reconciled,
// observers are dropped and in-flight requests are canceled.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	s.obsMu.Lock()
	for _, obs := range s.observers {
		obs.stop()
	}
	s.observers = make(map[int]*observer)
	s.obsMu.Unlock()

	s.logger.Debug().Msg("Settings store closed")
}

func (s *Store) requestContext() (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(s.ctx, s.timeout)
	}
	return context.WithCancel(s.ctx)
}

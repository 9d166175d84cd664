package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/skycast/internal/weather"
)

const (
	DefaultDebounce      = 500 * time.Millisecond
	DefaultToastDuration = 5 * time.Second

	// minSearchRunes is the shortest trimmed query that is sent.
	minSearchRunes = 2
)

// Forecaster is the remote side of the session. *provider.Client satisfies it.
type Forecaster interface {
	Search(ctx context.Context, text string) ([]weather.Place, error)
	FetchForecast(ctx context.Context, location string) (*weather.LocalWeather, error)
}

// Store persists the saved list. Every storage backend satisfies it.
type Store interface {
	Load(ctx context.Context) ([]weather.Place, error)
	Save(ctx context.Context, places []weather.Place) error
}

// Config tunes the session. Zero values select the defaults.
type Config struct {
	Debounce      time.Duration
	ToastDuration time.Duration
	// RefreshLimit caps concurrent forecast fetches on startup; 0 means no cap.
	RefreshLimit int
	// DiscardStaleSearches drops search responses superseded by a newer
	// request instead of letting the last response win.
	DiscardStaleSearches bool
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = DefaultToastDuration
	}
	return c
}

// Session owns the search, selection and saved-places state. All state is
// read and written on the goroutine running Run; network and store work
// runs elsewhere and posts its results back.
type Session struct {
	cfg    Config
	remote Forecaster
	store  Store
	log    *slog.Logger

	actions chan func()
	ready   chan struct{}
	done    chan struct{}
	bg      sync.WaitGroup
	saver   *saver

	// Owned by the Run goroutine.
	ctx             context.Context
	state           State
	searchText      string
	results         []weather.Place
	saved           []SavedPlace
	selected        *weather.Place
	selectedWeather *weather.LocalWeather
	presentation    Presentation
	toast           *Toast
	storeErr        error
	keystroke       uint64
	searchSeq       uint64
	toastSeq        uint64
	debounce        *time.Timer
	toastTimer      *time.Timer
}

// New constructs a Session. Nothing happens until Run is called.
func New(remote Forecaster, store Store, log *slog.Logger, cfg Config) *Session {
	s := &Session{
		cfg:     cfg.withDefaults(),
		remote:  remote,
		store:   store,
		log:     log,
		actions: make(chan func()),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
		results: []weather.Place{},
		saved:   []SavedPlace{},
	}
	s.saver = newSaver(store, log, s.saveFailed)
	return s
}

// Run loads the saved places, refreshes their weather and then serves
// calls until ctx is cancelled. Pending saves are flushed before it returns.
// It must be called exactly once; calls made before it starts fail with
// ErrNotStarted.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	close(s.ready)
	saverDone := make(chan struct{})
	go func() {
		defer close(saverDone)
		s.saver.run(ctx, s.done)
	}()

	s.startLoad()

	for {
		select {
		case fn := <-s.actions:
			fn()
		case <-ctx.Done():
			s.stopTimers()
			close(s.done)
			s.bg.Wait()
			<-saverDone
			s.log.Info("session stopped")
			return nil
		}
	}
}

// post queues fn on the loop. It is dropped once the loop has stopped.
func (s *Session) post(fn func()) {
	select {
	case s.actions <- fn:
	case <-s.done:
	}
}

// Ready is closed once Run has started serving calls.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// exec runs fn on the loop and waits for it.
func (s *Session) exec(fn func()) error {
	select {
	case <-s.ready:
	default:
		return ErrNotStarted
	}
	ran := make(chan struct{})
	select {
	case s.actions <- func() { fn(); close(ran) }:
	case <-s.done:
		return ErrClosed
	}
	<-ran
	return nil
}

// spawn runs fn on a background goroutine tied to the session lifetime.
func (s *Session) spawn(name string, fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("background task panicked", "task", name, "recover", r)
			}
		}()
		fn(s.ctx)
	}()
}

func (s *Session) stopTimers() {
	if s.debounce != nil {
		s.debounce.Stop()
	}
	if s.toastTimer != nil {
		s.toastTimer.Stop()
	}
}

// ---- startup ----

func (s *Session) startLoad() {
	s.spawn("load", func(ctx context.Context) {
		places, err := s.store.Load(ctx)
		s.post(func() { s.loaded(places, err) })
	})
}

func (s *Session) loaded(places []weather.Place, err error) {
	if err != nil {
		s.log.Error("loading saved places failed", "err", err)
		s.storeErr = err
		places = nil
	}

	entries := make([]SavedPlace, 0, len(places)+len(s.saved))
	for _, p := range places {
		if !containsSaved(entries, p) {
			entries = append(entries, SavedPlace{Place: p})
		}
	}
	for _, e := range s.saved {
		if !containsSaved(entries, e.Place) {
			entries = append(entries, e)
		}
	}
	s.saved = entries
	s.log.Info("saved places loaded", "count", len(places))

	var pending []weather.Place
	for _, e := range s.saved {
		if e.Weather == nil {
			pending = append(pending, e.Place)
		}
	}
	if len(pending) == 0 {
		return
	}
	if s.state.Kind == Idle {
		s.state = State{Kind: FetchingAllSavedWeather}
	}
	s.refreshAll(pending)
}

// refreshAll fetches every place concurrently. Failures are logged and
// otherwise ignored.
func (s *Session) refreshAll(places []weather.Place) {
	limit := s.cfg.RefreshLimit
	s.spawn("refresh", func(ctx context.Context) {
		g, gCtx := errgroup.WithContext(ctx)
		if limit > 0 {
			g.SetLimit(limit)
		}

		for _, p := range places {
			p := p
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						s.log.Error("saved place refresh panicked", "place", p.String(), "recover", r)
						err = fmt.Errorf("refresh of %s panicked: %v", p, r)
					}
				}()
				lw, fetchErr := s.remote.FetchForecast(gCtx, p.Query())
				if fetchErr != nil {
					s.log.Warn("saved place refresh failed", "place", p.String(), "err", fetchErr)
					return nil
				}
				s.post(func() { s.attachWeather(p, lw) })
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			s.log.Error("saved places refresh aborted", "err", err)
		}
		s.post(func() {
			if s.state.Kind == FetchingAllSavedWeather {
				s.state = State{Kind: Idle}
			}
		})
	})
}

func (s *Session) attachWeather(p weather.Place, lw *weather.LocalWeather) {
	if e := s.findSaved(p); e != nil {
		e.Weather = lw
	}
	if s.selected != nil && s.selected.Equal(p) {
		s.selectedWeather = lw
	}
}

// ---- search ----

// SetSearchText records a keystroke. The search runs once the text has been
// stable for the debounce interval and is at least two characters long.
func (s *Session) SetSearchText(text string) error {
	return s.exec(func() {
		s.searchText = text
		s.keystroke++
		seq := s.keystroke
		if s.debounce != nil {
			s.debounce.Stop()
		}
		s.debounce = time.AfterFunc(s.cfg.Debounce, func() {
			s.post(func() { s.debounceFired(seq) })
		})
	})
}

func (s *Session) debounceFired(seq uint64) {
	if seq != s.keystroke {
		return
	}
	query := strings.TrimSpace(s.searchText)
	if utf8.RuneCountInString(query) < minSearchRunes {
		return
	}

	s.results = []weather.Place{}
	s.state = State{Kind: LoadingSearchResults}
	s.searchSeq++
	req := s.searchSeq

	s.spawn("search", func(ctx context.Context) {
		places, err := s.remote.Search(ctx, query)
		s.post(func() { s.searchDone(req, query, places, err) })
	})
}

func (s *Session) searchDone(req uint64, query string, places []weather.Place, err error) {
	stale := req != s.searchSeq
	if stale && s.cfg.DiscardStaleSearches {
		s.log.Debug("discarding stale search response", "query", query)
		return
	}

	if err != nil {
		s.log.Error("place search failed", "query", query, "err", err)
	} else {
		s.results = places
	}
	if s.state.Kind == LoadingSearchResults {
		s.state = State{Kind: Idle}
	}
}

// ---- selection ----

type fetchOpts struct {
	present     bool
	showError   bool
	changeState bool
}

// SelectPlace shows the weather for p, fetching it unless it is cached on
// the saved list.
func (s *Session) SelectPlace(p weather.Place) error {
	return s.exec(func() {
		sel := p
		s.selected = &sel
		s.selectedWeather = nil

		if e := s.findSaved(p); e != nil && e.Weather != nil {
			s.selectedWeather = e.Weather
			s.state = State{Kind: Idle}
			s.present()
			return
		}
		s.fetchForPlace(p, fetchOpts{present: true, showError: true, changeState: true})
	})
}

// DismissWeather closes the weather view and clears the selection.
func (s *Session) DismissWeather() error {
	return s.exec(func() {
		s.presentation = PresentNone
		s.selected = nil
		s.selectedWeather = nil
	})
}

func (s *Session) present() {
	if s.searchText == "" {
		s.presentation = PresentPrimary
	} else {
		s.presentation = PresentOverlay
	}
}

func (s *Session) fetchForPlace(p weather.Place, opts fetchOpts) {
	if opts.changeState {
		sel := p
		s.state = State{Kind: FetchingWeatherForPlace, Place: &sel}
	}
	s.spawn("forecast", func(ctx context.Context) {
		lw, err := s.remote.FetchForecast(ctx, p.Query())
		s.post(func() { s.forecastDone(p, lw, err, opts) })
	})
}

func (s *Session) forecastDone(p weather.Place, lw *weather.LocalWeather, err error, opts fetchOpts) {
	if opts.changeState && s.state.fetching(p) {
		s.state = State{Kind: Idle}
	}

	if err != nil {
		s.log.Warn("forecast fetch failed", "place", p.String(), "err", err)
		if opts.showError {
			s.showToast(err.Error())
		}
		return
	}

	s.attachWeather(p, lw)
	if opts.present && s.selected != nil && s.selected.Equal(p) {
		s.present()
	}
}

// ---- saved places ----

// SaveSelectedPlace appends the selected place to the saved list, persists
// the list and closes the weather view. Saving a place twice is a no-op for
// the list.
func (s *Session) SaveSelectedPlace() error {
	var opErr error
	err := s.exec(func() {
		if s.selected == nil {
			opErr = ErrNoSelection
			return
		}
		p := *s.selected

		s.searchText = ""
		s.results = []weather.Place{}
		s.keystroke++
		if s.debounce != nil {
			s.debounce.Stop()
		}

		if !containsSaved(s.saved, p) {
			s.saved = append(s.saved, SavedPlace{Place: p, Weather: s.selectedWeather})
		}
		s.presentation = PresentNone
		s.fetchForPlace(p, fetchOpts{})
		s.persist()
	})
	if err != nil {
		return err
	}
	return opErr
}

// EditPlaces enters edit mode.
func (s *Session) EditPlaces() error {
	return s.exec(func() {
		s.state = State{Kind: EditingSavedPlaces}
	})
}

// DoneEditingPlaces leaves edit mode and persists the list.
func (s *Session) DoneEditingPlaces() error {
	return s.exec(func() {
		if s.state.Kind == EditingSavedPlaces {
			s.state = State{Kind: Idle}
		}
		s.persist()
	})
}

// RemovePlace drops p from the in-memory list. It only works in edit mode
// and is persisted by DoneEditingPlaces.
func (s *Session) RemovePlace(p weather.Place) error {
	var opErr error
	err := s.exec(func() {
		if s.state.Kind != EditingSavedPlaces {
			opErr = ErrNotEditing
			return
		}
		for i, e := range s.saved {
			if e.Place.Equal(p) {
				s.saved = append(s.saved[:i:i], s.saved[i+1:]...)
				return
			}
		}
		opErr = ErrNotSaved
	})
	if err != nil {
		return err
	}
	return opErr
}

func (s *Session) persist() {
	s.saver.enqueue(placesOf(s.saved))
}

func (s *Session) saveFailed(err error) {
	s.post(func() {
		s.storeErr = err
		s.showToast(err.Error())
	})
}

func (s *Session) findSaved(p weather.Place) *SavedPlace {
	for i := range s.saved {
		if s.saved[i].Place.Equal(p) {
			return &s.saved[i]
		}
	}
	return nil
}

func containsSaved(entries []SavedPlace, p weather.Place) bool {
	return weather.ContainsPlace(placesOf(entries), p)
}

func placesOf(entries []SavedPlace) []weather.Place {
	places := make([]weather.Place, len(entries))
	for i, e := range entries {
		places[i] = e.Place
	}
	return places
}

// ---- toasts ----

func (s *Session) showToast(msg string) {
	s.toastSeq++
	id := s.toastSeq
	s.toast = &Toast{ID: id, Message: msg}

	if s.toastTimer != nil {
		s.toastTimer.Stop()
	}
	s.toastTimer = time.AfterFunc(s.cfg.ToastDuration, func() {
		s.post(func() {
			if s.toast != nil && s.toast.ID == id {
				s.toast = nil
			}
		})
	})
}

// DismissToast hides the current notification early.
func (s *Session) DismissToast() error {
	return s.exec(func() { s.toast = nil })
}

// ---- snapshot ----

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() (View, error) {
	var v View
	err := s.exec(func() {
		v = View{
			State:           s.state,
			SearchText:      s.searchText,
			SearchResults:   append([]weather.Place(nil), s.results...),
			Saved:           append([]SavedPlace(nil), s.saved...),
			SelectedWeather: s.selectedWeather,
			Presentation:    s.presentation,
			CanEditPlaces:   len(s.saved) > 0,
			StoreError:      s.storeErr,
		}
		if s.state.Place != nil {
			p := *s.state.Place
			v.State.Place = &p
		}
		if s.selected != nil {
			p := *s.selected
			v.Selected = &p
			v.SelectedIsSaved = containsSaved(s.saved, p)
		}
		if s.toast != nil {
			t := *s.toast
			v.Toast = &t
		}
	})
	return v, err
}

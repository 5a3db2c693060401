package analytics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Recorder writes views to a Store off the request path. Views arriving
// while the queue is full are dropped.
type Recorder struct {
	store *Store
	queue chan View
	logf  func(format string, args ...any)
	wg    sync.WaitGroup
	once  sync.Once
}

// NewRecorder starts a Recorder with a queue of size buffer. A buffer of
// zero records synchronously.
func NewRecorder(store *Store, buffer int, logf func(format string, args ...any)) *Recorder {
	r := &Recorder{store: store, logf: logf}
	if buffer > 0 {
		r.queue = make(chan View, buffer)
		r.wg.Add(1)
		go r.run()
	}
	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for v := range r.queue {
		r.write(v)
	}
}

func (r *Recorder) write(v View) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.Record(ctx, v); err != nil {
		r.logf("%v", err)
	}
}

// Track queues v. It reports false if the view was dropped.
func (r *Recorder) Track(v View) bool {
	if r.queue == nil {
		r.write(v)
		return true
	}
	select {
	case r.queue <- v:
		return true
	default:
		return false
	}
}

// Close stops accepting views and waits for queued ones to be written.
// Track must not be called after Close.
func (r *Recorder) Close() {
	r.once.Do(func() {
		if r.queue != nil {
			close(r.queue)
		}
		r.wg.Wait()
	})
}

// Middleware counts successful GET responses of the wrapped routes.
func Middleware(r *Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			req := c.Request()
			if err != nil || req.Method != http.MethodGet || c.Response().Status != http.StatusOK {
				return err
			}
			ua := req.UserAgent()
			r.Track(View{
				Path:     req.URL.Path,
				Referrer: CleanReferrer(req.Referer(), req.Host),
				Device:   Device(ua),
				Bot:      BotName(ua),
				At:       time.Now(),
			})
			return nil
		}
	}
}

package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/RussellBTech/RewatchTranscriptFetcher/clients"
	cfg "github.com/RussellBTech/RewatchTranscriptFetcher/config"
	"github.com/RussellBTech/RewatchTranscriptFetcher/instrument"
)

// Transport sends one GraphQL request and returns the raw response body.
type Transport interface {
	Post(ctx context.Context, req clients.GraphQLRequest) ([]byte, error)
}

type Pipeline struct {
	cfg     *cfg.Root
	http    *clients.HTTP
	dial    func(FetchRequest) Transport
	log     *logrus.Entry
	rec     instrument.Recorder
	limiter *rate.Limiter
	loc     *time.Location
	render  RenderOptions
}

type Option func(*Pipeline)

// WithTransport makes every fetch use t instead of a Rewatch client.
func WithTransport(t Transport) Option {
	return func(p *Pipeline) { p.dial = func(FetchRequest) Transport { return t } }
}

func WithLogger(l *logrus.Entry) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

func WithRecorder(r instrument.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.rec = r
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func NewPipeline(c *cfg.Root, opts ...Option) *Pipeline {
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	p := &Pipeline{
		cfg:    c,
		http:   clients.NewHTTP(cfg.DurSeconds(c.Fetch.TimeoutSeconds)),
		log:    logrus.NewEntry(logrus.StandardLogger()),
		rec:    instrument.Nop{},
		loc:    loc,
		render: RenderOptions{IncludeSummary: c.Fetch.IncludeSummary},
	}
	p.dial = func(req FetchRequest) Transport {
		return clients.NewRewatch(p.http, req.Subdomain, req.APIKey, clients.WithEndpoint(c.Rewatch.Endpoint))
	}
	if rps := c.Fetch.RequestsPerSecond; rps > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type state int

const (
	stateFetching state = iota
	stateProcessingPage
	stateDone
)

// Fetch pages through the channel's videos newest first and renders every
// video created inside the requested dates. Any failure discards the
// partial report: the result is either complete or nil.
func (p *Pipeline) Fetch(ctx context.Context, req FetchRequest) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := p.log.WithField("run_id", runID)
	w := NewWindow(req.StartDate, req.EndDate, p.loc)
	t := p.dial(req)

	log.WithFields(logrus.Fields{
		"subdomain": req.Subdomain,
		"from":      w.Start.Format(time.RFC3339),
		"to":        w.End.Format(time.RFC3339),
	}).Info("fetching transcripts")
	if w.Empty() {
		log.Info("end date is before start date; no video can match")
	}

	started := time.Now()
	st := &runState{shouldContinue: true}
	var (
		body   []byte
		timing instrument.PageTiming
		err    error
	)
	for s := stateFetching; s != stateDone; {
		switch s {
		case stateFetching:
			timing = instrument.PageTiming{Page: st.pages + 1}
			body, err = p.fetch(ctx, t, st.cursor, &timing)
			if err != nil {
				s = stateDone
			} else {
				s = stateProcessingPage
			}
		case stateProcessingPage:
			s, err = p.process(body, w, st, &timing)
			p.rec.PageDone(timing)
			log.WithFields(logrus.Fields{
				"page":        timing.Page,
				"videos":      timing.Records,
				"matched":     st.matched,
				"next_cursor": st.cursor != "",
				"request_ms":  timing.Request.Milliseconds(),
			}).Debug("page processed")
		}
	}

	elapsed := time.Since(started)
	p.rec.RunDone(elapsed)
	if err != nil {
		log.WithError(err).WithField("pages", st.pages).Error("fetch failed")
		return nil, err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Meeting count: %d\n", st.seen)
	out.WriteString(Divider + "\n")
	out.WriteString(st.rendered.String())

	log.WithFields(logrus.Fields{
		"meetings":   st.seen,
		"matched":    st.matched,
		"pages":      st.pages,
		"early_stop": st.stoppedEarly,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("fetch complete")

	return &Report{
		RunID:        runID,
		Subdomain:    req.Subdomain,
		Text:         out.String(),
		MeetingCount: st.seen,
		Matched:      st.matched,
		Pages:        st.pages,
		StoppedEarly: st.stoppedEarly,
		Window:       w,
		Elapsed:      elapsed,
	}, nil
}

func (p *Pipeline) fetch(ctx context.Context, t Transport, cursor string, timing *instrument.PageTiming) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &clients.TransportError{Op: "post", Err: err}
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &clients.TransportError{Op: "wait", Err: err}
		}
	}
	begin := time.Now()
	body, err := t.Post(ctx, clients.BuildVideosQuery(cursor))
	timing.Request = time.Since(begin)
	return body, err
}

// process parses one page, files every video and decides whether another
// page is needed. Pages are newest first, so the first video older than the
// window means nothing after it can match; the rest of the page is still
// counted.
func (p *Pipeline) process(body []byte, w Window, st *runState, timing *instrument.PageTiming) (state, error) {
	begin := time.Now()
	defer func() {
		timing.Processing = time.Since(begin)
		timing.Total = timing.Request + timing.Processing
	}()

	page, err := clients.ParsePage(body)
	if err != nil {
		return stateDone, err
	}
	st.pages++
	timing.Records = len(page.Videos)

	for _, v := range page.Videos {
		st.seen++
		switch w.Classify(v.CreatedAt) {
		case InRange:
			RenderMeeting(&st.rendered, v, p.render)
			st.matched++
			timing.Matched++
		case BeforeRange:
			st.shouldContinue = false
		}
	}
	st.cursor = page.EndCursor

	if !st.shouldContinue {
		st.stoppedEarly = true
		return stateDone, nil
	}
	if !page.HasNextPage || st.cursor == "" {
		return stateDone, nil
	}
	return stateFetching, nil
}

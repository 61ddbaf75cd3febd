package live

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ThatOtherAndrew/Layerview/internal/gcode"
	"github.com/ThatOtherAndrew/Layerview/internal/models"
)

// Update is one poll result. Toolpath is set only when the printed file
// changed and its G-code was fetched and parsed.
type Update struct {
	Status   models.PrintStatus
	Toolpath *models.Toolpath
	Err      error
}

// Poller polls a Client on its own goroutine and hands results to the
// render loop over a channel.
type Poller struct {
	client   *Client
	interval time.Duration
	log      zerolog.Logger
	updates  chan Update
	file     string
}

func NewPoller(client *Client, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		client:   client,
		interval: interval,
		log:      log,
		updates:  make(chan Update, 1),
	}
}

// Updates is closed when Run returns.
func (p *Poller) Updates() <-chan Update { return p.updates }

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.updates)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		u := p.poll(ctx)
		select {
		case p.updates <- u:
		case <-ctx.Done():
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context) Update {
	st, err := p.client.Status(ctx)
	if err != nil {
		p.log.Debug().Err(err).Msg("Print status unavailable")
		return Update{Status: models.PrintStatus{Status: models.StatusIdle}, Err: err}
	}

	u := Update{Status: st}
	if !st.Status.Active() {
		p.file = ""
		return u
	}
	if st.Filename == p.file {
		return u
	}

	text, err := p.client.Gcode(ctx, st.Filename)
	if err != nil {
		// Left unset so the next poll retries.
		p.log.Warn().Err(err).Str("file", st.Filename).Msg("Failed to fetch printed G-code")
		u.Err = err
		return u
	}
	p.file = st.Filename
	u.Toolpath = gcode.Load(text)
	p.log.Info().
		Str("file", st.Filename).
		Int("moves", u.Toolpath.Len()).
		Msg("Following print")
	return u
}

package notify

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/store"
)

// RefreshMsg is a tea.Msg asking the UI to reload a quest, or every quest
// when All is set.
type RefreshMsg struct {
	QuestID string
	All     bool
	Focus   bool
}

// ErrorMsg is a tea.Msg sent when polling the store fails.
type ErrorMsg struct {
	Err error
}

// pollTimeout bounds a single poll of the notifications table.
const pollTimeout = 5 * time.Second

// defaultInterval is used when the configured interval is not positive.
const defaultInterval = time.Second

// Poller watches the notifications table for rows written by other
// clients and turns them into RefreshMsg values.
type Poller struct {
	store    store.Store
	clientID string
	interval time.Duration
	logger   *zap.Logger

	resultCh  chan tea.Msg
	triggerCh chan struct{}
	stopCh    chan struct{}
	done      chan struct{}

	mu      sync.Mutex
	running bool
	cursor  int64
}

// NewPoller creates a Poller for clientID. Rows written by clientID are ignored.
func NewPoller(s store.Store, clientID string, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		store:     s,
		clientID:  clientID,
		interval:  interval,
		logger:    logger,
		resultCh:  make(chan tea.Msg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start positions the cursor after the newest existing row, starts the
// polling goroutine and returns a tea.Cmd that waits for the first message.
func (p *Poller) Start(ctx context.Context) tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	latest, err := p.store.LatestNotificationID(ctx)
	if err != nil {
		p.logger.Warn("reading notification cursor", zap.Error(err))
	}
	p.cursor = latest

	go p.loop()

	return p.WaitForNext()
}

// Stop halts the polling goroutine and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	<-p.done
}

// Trigger asks for an immediate poll.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// WaitForNext returns a tea.Cmd that waits for the next message. Call it
// again after handling each message to keep listening.
func (p *Poller) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (p *Poller) loop() {
	defer close(p.done)
	defer close(p.resultCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.poll()
		case <-p.triggerCh:
			p.poll()
		}
	}
}

// poll reads rows past the cursor and forwards them in order.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	rows, err := p.store.GetNotificationsAfter(ctx, p.cursor, p.clientID)
	if err != nil {
		p.logger.Warn("polling notifications", zap.Error(err))
		p.send(ErrorMsg{Err: err})
		return
	}

	for _, n := range rows {
		p.cursor = n.ID
		p.send(toMsg(n))
	}
}

func toMsg(n model.Notification) RefreshMsg {
	return RefreshMsg{
		QuestID: n.QuestID,
		All:     n.Kind == model.NotifyRefreshAll,
		Focus:   n.Focus,
	}
}

// send delivers msg unless the poller is stopping. Messages are dropped
// when the channel is full so the poller never blocks the UI.
func (p *Poller) send(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	case <-p.stopCh:
	default:
		p.logger.Debug("dropping notification, channel full")
	}
}

// Package platform connects the timer engine to the desktop: notifications,
// the terminal bell and an idle inhibitor while a timer runs.
package platform

import (
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/gen2brain/beeep"

	"lemoncello/timer"
)

const callTimeout = 2 * time.Second

var errTimedOut = errors.New("timed out")

func init() {
	beeep.AppName = "lemoncello"
}

// NotifierConfig selects which channels a Notifier uses.
type NotifierConfig struct {
	Desktop bool
	Bell    bool
	Logger  *log.Logger
}

// Notifier shows notices as desktop notifications and rings the bell.
// It never blocks the caller.
type Notifier struct {
	config  NotifierConfig
	desktop atomic.Bool
	notify  func(title, body string) error
	beep    func() error
}

// NewNotifier builds a Notifier backed by the desktop's notification service.
func NewNotifier(config NotifierConfig) *Notifier {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	n := &Notifier{
		config: config,
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
	n.desktop.Store(config.Desktop)
	return n
}

// SetDesktop turns desktop notifications on or off. The bell is unaffected.
func (n *Notifier) SetDesktop(enabled bool) {
	n.desktop.Store(enabled)
}

// DesktopEnabled reports whether desktop notifications are on.
func (n *Notifier) DesktopEnabled() bool {
	return n.desktop.Load()
}

// Notify implements timer.Notifier. Notices without a title only ring the bell.
// Progress notices are silent.
func (n *Notifier) Notify(notice timer.Notice) {
	if n.config.Bell && notice.Kind != timer.NoticeProgress {
		go n.call("bell", n.beep)
	}
	if notice.CueOnly() || !n.desktop.Load() {
		return
	}
	go n.call("desktop", func() error {
		return n.notify(notice.Title, notice.Body)
	})
}

// call runs fn, logging its failure. A call still running after callTimeout
// is abandoned.
func (n *Notifier) call(channel string, fn func() error) {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(callTimeout):
		err = errTimedOut
	}
	if err != nil {
		n.config.Logger.Printf("notify: %s: %v", channel, err)
	}
}

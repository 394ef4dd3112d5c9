package workers

import (
	"context"

	"clubnight-api/messaging"
	"github.com/rs/zerolog"
)

// Consumer delivers raw message bodies to a handler.
type Consumer interface {
	Consume(handler func([]byte) error) error
}

// WinnerMailer sends the e-mail that tells a winner about the prize.
type WinnerMailer interface {
	SendWinnerNotice(msg messaging.WinnerDrawn) error
}

// WinnerNotifier reads WinnerDrawn messages and e-mails the winners.
type WinnerNotifier struct {
	consumer Consumer
	mailer   WinnerMailer
	log      *zerolog.Logger
	done     chan struct{}
	cancel   context.CancelFunc
}

func NewWinnerNotifier(consumer Consumer, mailer WinnerMailer, log *zerolog.Logger) *WinnerNotifier {
	return &WinnerNotifier{
		consumer: consumer,
		mailer:   mailer,
		log:      log,
		done:     make(chan struct{}),
	}
}

func (w *WinnerNotifier) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.log.Info().Msg("winner notifier started")

	go func() {
		defer close(w.done)

		if err := w.consumer.Consume(w.handle); err != nil {
			w.log.Error().Err(err).Msg("failed to start consuming winners")
			return
		}

		<-cctx.Done()
		w.log.Info().Msg("winner notifier stopped")
	}()
}

// handle never asks for redelivery: a bad body or a failed e-mail is logged and dropped.
func (w *WinnerNotifier) handle(body []byte) error {
	msg, err := messaging.DecodeWinner(body)
	if err != nil {
		w.log.Error().Err(err).Str("body", string(body)).Msg("failed to decode winner message")
		return nil
	}

	w.log.Info().
		Str("giveaway_id", msg.GiveawayID).
		Str("email", msg.Email).
		Msg("winner message received")

	if err := w.mailer.SendWinnerNotice(msg); err != nil {
		w.log.Warn().Err(err).Str("email", msg.Email).Msg("failed to send winner notice")
		return nil
	}

	w.log.Info().Str("email", msg.Email).Str("giveaway_id", msg.GiveawayID).Msg("winner notice sent")
	return nil
}

func (w *WinnerNotifier) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

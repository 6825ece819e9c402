package instantiation

import (
	"context"
	"errors"
	"time"

	"creditagency/core"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
)

const limit = 100

var errNoReplies = errors.New("no pending replies")

// Watcher delivers market instantiation acknowledgements to the agency
type Watcher struct {
	feed   core.InstantiationFeed
	agency core.AgencyService
	clock  clock.Clock
}

// New new instantiation watcher
func New(feed core.InstantiationFeed, agency core.AgencyService) *Watcher {
	return &Watcher{
		feed:   feed,
		agency: agency,
		clock:  clock.New(),
	}
}

// Run run worker
func (w *Watcher) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "instantiation")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.clock.After(dur):
			if err := w.run(ctx); err == nil {
				dur = 100 * time.Millisecond
			} else {
				dur = time.Second
			}
		}
	}
}

func (w *Watcher) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	replies, err := w.feed.Pending(ctx, limit)
	if err != nil {
		log.WithError(err).Errorln("feed.Pending")
		return err
	}

	if len(replies) == 0 {
		return errNoReplies
	}

	for _, reply := range replies {
		if err := w.handleReply(ctx, reply); err != nil {
			return err
		}

		if err := w.feed.Ack(ctx, reply.ID); err != nil {
			log.WithError(err).Errorln("feed.Ack", reply.ID)
			return err
		}
	}

	return nil
}

// handleReply errors are returned only when the reply should be retried
func (w *Watcher) handleReply(ctx context.Context, reply *core.InstantiateReply) error {
	log := logger.FromContext(ctx).WithField("instantiation", reply.ID)

	err := w.agency.HandleInstantiated(ctx, reply)
	switch {
	case err == nil:
		log.Infoln("market ready at", reply.Address)
		return nil
	case errors.Is(err, core.ErrInstantiationFailed), errors.Is(err, core.ErrUnknownInstantiation):
		log.WithError(err).Warnln("instantiation dropped")
		return nil
	default:
		log.WithError(err).Errorln("agency.HandleInstantiated")
		return err
	}
}

package reactive

import "go.uber.org/zap"

// SubscriberFuncs fills in a Subscriber from independent callbacks,
// so a caller need not implement the full interface just to observe a
// stream. Adapted from the teacher's SubscriberParts/Build DSL
// (pkg/rs/pubsub.go); the unhandled-error fallback there used
// fmt.Printf, replaced here with structured logging.
type SubscriberFuncs[T any] struct {
	OnSubscribeFunc func(Subscription)
	OnNextFunc      func(T)
	OnErrorFunc     func(error)
	OnCompleteFunc  func()
	// Log receives unhandled errors when OnErrorFunc is nil. Defaults
	// to a no-op logger.
	Log *zap.Logger
}

// Build fills in any nil callback and returns a Subscriber.
func (s *SubscriberFuncs[T]) Build() Subscriber[T] {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if s.OnSubscribeFunc == nil {
		s.OnSubscribeFunc = func(Subscription) {}
	}
	if s.OnNextFunc == nil {
		s.OnNextFunc = func(T) {}
	}
	if s.OnErrorFunc == nil {
		s.OnErrorFunc = func(e error) {
			log.Error("unhandled subscriber error", zap.Error(e))
		}
	}
	if s.OnCompleteFunc == nil {
		s.OnCompleteFunc = func() {}
	}
	return &assembledSubscriber[T]{s}
}

type assembledSubscriber[T any] struct {
	parts *SubscriberFuncs[T]
}

func (a *assembledSubscriber[T]) OnSubscribe(s Subscription) { a.parts.OnSubscribeFunc(s) }
func (a *assembledSubscriber[T]) OnNext(v T)                 { a.parts.OnNextFunc(v) }
func (a *assembledSubscriber[T]) OnError(e error)            { a.parts.OnErrorFunc(e) }
func (a *assembledSubscriber[T]) OnComplete()                { a.parts.OnCompleteFunc() }

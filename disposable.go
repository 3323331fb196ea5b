package inject

import "go.uber.org/zap"

// Close closes the singleton instances implementing io.Closer, most
// recently created first, and empties the singleton cache. Later requests
// fail with ErrInjectorClosed; Binder.Injector returns a fresh injector.
//
// Session scoped instances live in their session and are not closed.
func (i *Injector) Close() error {
	if !i.closed.CompareAndSwap(false, true) {
		return nil
	}

	count := i.registry.singleton.len()
	err := i.registry.singleton.close()

	i.logger.Debug("injector closed",
		zap.String("id", i.id),
		zap.Int("singletons", count),
		zap.Error(err),
	)

	return err
}

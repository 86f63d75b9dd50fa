package service

// Emitter receives domain events after the owning transaction has committed.
// *events.Dispatcher satisfies it.
type Emitter interface {
	Emit(topic, key, eventType string, payload map[string]any)
}

type nopEmitter struct{}

func (nopEmitter) Emit(string, string, string, map[string]any) {}

func emitterOrNop(e Emitter) Emitter {
	if e == nil {
		return nopEmitter{}
	}
	return e
}

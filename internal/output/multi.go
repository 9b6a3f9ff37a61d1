package output

import (
	"errors"

	"github.com/inodb/vibe-eff/internal/annotate"
	"github.com/inodb/vibe-eff/internal/variant"
)

// MultiWriter fans effects out to several writers, in order. The first
// error stops the call.
type MultiWriter struct {
	writers []annotate.EffectWriter
}

var _ annotate.EffectWriter = (*MultiWriter)(nil)

// NewMultiWriter creates a writer over ws.
func NewMultiWriter(ws ...annotate.EffectWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

func (m *MultiWriter) WriteHeader() error {
	for _, w := range m.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiWriter) Write(v *variant.Variant, effs []*annotate.ChangeEffect) error {
	for _, w := range m.writers {
		if err := w.Write(v, effs); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer and joins their errors.
func (m *MultiWriter) Flush() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{ name string }

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) ListBusyIntervals(context.Context, time.Time, time.Time) ([]BusyInterval, error) {
	return nil, nil
}
func (p *fakeProvider) CreateEvent(context.Context, EventInput) (string, error) { return "", nil }
func (p *fakeProvider) UpdateEvent(context.Context, string, EventInput) error  { return nil }
func (p *fakeProvider) DeleteEvent(context.Context, string) error              { return nil }

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeProvider{name: "caldav"})
	registry.Register(&fakeProvider{name: "google"})

	provider, err := registry.Get("caldav")
	require.NoError(t, err)
	assert.Equal(t, "caldav", provider.Name())

	_, err = registry.Get("outlook")
	assert.Error(t, err)

	assert.Equal(t, []string{"caldav", "google"}, registry.Names())
}

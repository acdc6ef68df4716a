package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fastshift/internal/database"
	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/queue"
	"github.com/iliyamo/fastshift/internal/repository"
	"github.com/iliyamo/fastshift/internal/service"
	"github.com/iliyamo/fastshift/internal/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ParcelEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ParcelEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	st     *store.Store
	svc    *service.Services
	events *recordingPublisher
}

func newFixture(t *testing.T, atomic bool) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db, repository.SQLite))
	st := repository.NewStore(db)
	t.Cleanup(func() { _ = st.Close() })

	events := &recordingPublisher{}
	return &fixture{
		st:     st,
		events: events,
		svc:    service.New(service.Deps{Store: st, Events: events, Atomic: atomic}),
	}
}

// paidParcel books a parcel for creator and records a payment for it.
func (f *fixture) paidParcel(t *testing.T, creator string) string {
	t.Helper()
	ctx := context.Background()
	id, err := f.svc.Parcels.Create(ctx, &model.Parcel{CreatedBy: creator})
	require.NoError(t, err)
	_, err = f.st.Parcels.MarkPaid(ctx, id)
	require.NoError(t, err)
	return id
}

// activeRider submits and activates a rider with a matching user account.
func (f *fixture) activeRider(t *testing.T, email, district string) string {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Users.Upsert(ctx, &model.User{Email: email})
	require.NoError(t, err)
	id, err := f.svc.Riders.Submit(ctx, &model.Rider{Name: "Rider " + email, Email: email, District: district})
	require.NoError(t, err)
	_, err = f.svc.Riders.SetStatus(ctx, id, model.RiderActive, "")
	require.NoError(t, err)
	return id
}

func requireKind(t *testing.T, err error, kind service.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, service.KindOf(err), "error: %v", err)
}

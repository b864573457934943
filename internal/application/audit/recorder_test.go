package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-isp/internal/application/audit"
	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// fakeAuditRepo guarda entradas en memoria y puede simular fallos de escritura.
type fakeAuditRepo struct {
	entries []*entity.AuditLogEntry
	failing bool
}

func (f *fakeAuditRepo) Create(_ context.Context, e *entity.AuditLogEntry) error {
	if f.failing {
		return errors.New("disco lleno")
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditRepo) ListByDocument(_ context.Context, collection, documentID string) ([]*entity.AuditLogEntry, error) {
	var out []*entity.AuditLogEntry
	for _, e := range f.entries {
		if e.Collection == collection && e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecorder_RegistraBeforeYAfter(t *testing.T) {
	repo := &fakeAuditRepo{}
	rec := audit.NewRecorder(repo, logger.Nop())

	before := &entity.Lead{ID: "L1", Status: entity.LeadStatusNew}
	after := &entity.Lead{ID: "L1", Status: entity.LeadStatusConverted}
	rec.Record(context.Background(), "C1", "U1", events.ActionUpdate, events.CollectionLeads, "L1", before, after)

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Equal(t, "update", e.Action)
	assert.Equal(t, events.CollectionLeads, e.Collection)
	assert.Equal(t, "L1", e.DocumentID)
	assert.Equal(t, "U1", e.ActorID)
	assert.Equal(t, entity.LeadStatusNew, e.Before["Status"])
	assert.Equal(t, entity.LeadStatusConverted, e.After["Status"])
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestRecorder_CreateSinBefore(t *testing.T) {
	repo := &fakeAuditRepo{}
	rec := audit.NewRecorder(repo, logger.Nop())

	rec.Record(context.Background(), "C1", "U1", events.ActionCreate, events.CollectionSubscribers, "S1",
		nil, &entity.Subscriber{ID: "S1", Status: entity.SubscriberStatusPendingInstallation})

	require.Len(t, repo.entries, 1)
	assert.Nil(t, repo.entries[0].Before, "create no lleva snapshot previo")
	assert.NotNil(t, repo.entries[0].After)
}

// El contrato clave: un fallo del log de auditoría jamás interrumpe la
// transacción de negocio que lo disparó.
func TestRecorder_FalloDeEscrituraSeTraga(t *testing.T) {
	repo := &fakeAuditRepo{failing: true}
	rec := audit.NewRecorder(repo, logger.Nop())

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), "C1", "", events.ActionDelete, events.CollectionTickets, "T1",
			&entity.Ticket{ID: "T1"}, nil)
	})

	err := rec.Handle(context.Background(), events.EntityEvent{
		Collection: events.CollectionTickets,
		Action:     events.ActionDelete,
		DocumentID: "T1",
	})
	assert.NoError(t, err, "el handler de auditoría nunca propaga errores")
}

func TestRecorder_ComoSuscriptorDelBus(t *testing.T) {
	repo := &fakeAuditRepo{}
	rec := audit.NewRecorder(repo, logger.Nop())
	bus := events.NewBus(logger.Nop())
	bus.Subscribe(events.CollectionAll, rec)

	require.NoError(t, bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionPayments,
		Action:     events.ActionCreate,
		DocumentID: "P1",
		CompanyID:  "C1",
		After:      &entity.Payment{ID: "P1"},
	}))

	entries, err := repo.ListByDocument(context.Background(), events.CollectionPayments, "P1")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "cada mutación publicada produce exactamente una entrada")
}

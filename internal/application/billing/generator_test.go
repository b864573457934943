package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-isp/internal/application/billing"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// BuildInitialInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildInitialInvoice_SoloTarifaDelPlan(t *testing.T) {
	sub := &entity.Subscriber{ID: "S1", CompanyID: "C1"}
	plan := &entity.ServicePlan{Name: "Hogar 10M", Price: dec("45000")}
	now := time.Now()

	inv, items := billing.BuildInitialInvoice(sub, plan, nil, now)

	assert.Equal(t, "C1", inv.CompanyID, "la factura hereda el tenant del abonado")
	assert.Equal(t, "S1", inv.SubscriberID)
	assert.Equal(t, entity.InvoiceStatusUnpaid, inv.Status)
	assert.True(t, inv.AmountDue.Equal(dec("45000")))
	assert.True(t, inv.AmountPaid.IsZero())
	assert.Equal(t, now, inv.DueDate, "primera factura vence de inmediato")
	assert.Regexp(t, `^FAC-\d+$`, inv.Number)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Description, "Hogar 10M")
}

func TestBuildInitialInvoice_ConCargosUnicos(t *testing.T) {
	sub := &entity.Subscriber{ID: "S1", CompanyID: "C1"}
	plan := &entity.ServicePlan{Name: "Pyme 50M", Price: dec("120000")}
	charges := []billing.Charge{
		{Description: "Instalación", Quantity: dec("1"), Price: dec("80000")},
		{Description: "Metros de cable extra", Quantity: dec("15"), Price: dec("1500")},
	}

	inv, items := billing.BuildInitialInvoice(sub, plan, charges, time.Now())

	// 120000 + 80000 + 15*1500 = 222500
	assert.True(t, inv.AmountDue.Equal(dec("222500")), "amountDue = %s", inv.AmountDue)
	require.Len(t, items, 3)
	assert.True(t, items[2].Subtotal.Equal(dec("22500")))
	for _, it := range items {
		assert.Equal(t, inv.ID, it.InvoiceID)
	}
}

func TestBuildInitialInvoice_NumerosUnicos(t *testing.T) {
	sub := &entity.Subscriber{ID: "S1", CompanyID: "C1"}
	plan := &entity.ServicePlan{Name: "X", Price: dec("1")}

	a, _ := billing.BuildInitialInvoice(sub, plan, nil, time.Now())
	b, _ := billing.BuildInitialInvoice(sub, plan, nil, time.Now())
	assert.NotEqual(t, a.Number, b.Number)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_PagoCompleto(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceStatusUnpaid, AmountDue: dec("500"), AmountPaid: decimal.Zero}

	rec := billing.Reconcile(inv, dec("500"))
	assert.Equal(t, entity.InvoiceStatusPaid, rec.NewStatus)
	assert.True(t, rec.FullyPaid)
	assert.True(t, rec.NewAmountPaid.Equal(dec("500")))
}

func TestReconcile_PagoParcialMantieneEstado(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceStatusOverdue, AmountDue: dec("500"), AmountPaid: dec("100")}

	rec := billing.Reconcile(inv, dec("150"))
	assert.Equal(t, entity.InvoiceStatusOverdue, rec.NewStatus, "parcial no cambia el estado")
	assert.False(t, rec.FullyPaid)
	assert.True(t, rec.NewAmountPaid.Equal(dec("250")))
}

func TestReconcile_PagoAcumuladoCompleta(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceStatusUnpaid, AmountDue: dec("500"), AmountPaid: dec("400")}

	rec := billing.Reconcile(inv, dec("100"))
	assert.Equal(t, entity.InvoiceStatusPaid, rec.NewStatus)
	assert.True(t, rec.FullyPaid)
}

func TestReconcile_SobrepagoQuedaPaid(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceStatusUnpaid, AmountDue: dec("500")}

	rec := billing.Reconcile(inv, dec("600"))
	assert.Equal(t, entity.InvoiceStatusPaid, rec.NewStatus)
	assert.True(t, rec.NewAmountPaid.Equal(dec("600")))
}

func TestReconcile_WaivedNoSeToca(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceStatusWaived, AmountDue: dec("500")}

	rec := billing.Reconcile(inv, dec("500"))
	assert.Equal(t, entity.InvoiceStatusWaived, rec.NewStatus)
	assert.False(t, rec.FullyPaid)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReconnectPolicy
// ──────────────────────────────────────────────────────────────────────────────

func TestReconnectPolicy_AnyPayment(t *testing.T) {
	p := billing.ParseReconnectPolicy("any-payment")
	// Cualquier pago positivo reconecta aunque quede saldo
	assert.True(t, p.Satisfied(dec("1"), dec("9999")))
	assert.False(t, p.Satisfied(decimal.Zero, dec("9999")))
}

func TestReconnectPolicy_FullBalance(t *testing.T) {
	p := billing.ParseReconnectPolicy("full-balance")
	assert.False(t, p.Satisfied(dec("100"), dec("50")), "queda saldo: no reconecta")
	assert.True(t, p.Satisfied(dec("150"), decimal.Zero))
	assert.True(t, p.Satisfied(dec("200"), dec("-50")), "saldo a favor también reconecta")
}

func TestParseReconnectPolicy_DesconocidoCaeEnAnyPayment(t *testing.T) {
	assert.Equal(t, billing.ReconnectAnyPayment, billing.ParseReconnectPolicy(""))
	assert.Equal(t, billing.ReconnectAnyPayment, billing.ParseReconnectPolicy("otra-cosa"))
	assert.Equal(t, billing.ReconnectFullBalance, billing.ParseReconnectPolicy("full-balance"))
}

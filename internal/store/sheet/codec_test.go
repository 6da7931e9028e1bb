package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda-system/internal/domain"
)

var now = time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC)

func TestParseOrderRow(t *testing.T) {
	row := map[string]string{
		"numero_pedido":    "665123",
		"numero_mesa":      "4",
		"pedido":           "2x Patatas Bravas, 1x Paella de Marisco",
		"hora_pedido":      "14:30",
		"hora_aceptado":    "14:35",
		"estado":           "aceptado",
		"notas_especiales": "sin cebolla",
		"comensales":       "3",
		"total_pedido":     "31.00",
	}

	o, err := parseOrderRow(row, now)
	require.NoError(t, err)
	assert.Equal(t, "665123", o.ID)
	assert.Equal(t, "4", o.TableNumber)
	assert.Equal(t, domain.StatusCooking, o.Status)
	assert.Equal(t, 3, o.Diners)
	assert.InDelta(t, 31.0, o.TotalPrice, 0.001)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Patatas Bravas", o.Items[0].MenuItem.Name)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, 1, o.Items[1].Quantity)

	assert.Equal(t, 14, o.CreatedAt.Hour())
	assert.Equal(t, 30, o.CreatedAt.Minute())
	assert.Equal(t, now.Day(), o.CreatedAt.Day())
	assert.False(t, o.AcceptedAt.IsZero())
	assert.True(t, o.ServedAt.IsZero())
}

func TestParseOrderRowMissingID(t *testing.T) {
	_, err := parseOrderRow(map[string]string{"pedido": "1x Gilda"}, now)
	assert.Error(t, err)
}

func TestParseOrderRowNoParseableItems(t *testing.T) {
	row := map[string]string{"numero_pedido": "000001", "pedido": "garbled cell"}
	_, err := parseOrderRow(row, now)
	assert.Error(t, err)
}

func TestParseItemListSkipsBadEntries(t *testing.T) {
	items := parseItemList("2x Bravas, not-a-line, x Paella, 0x Gilda, 1x Flan", "", now)
	require.Len(t, items, 2)
	assert.Equal(t, "Bravas", items[0].MenuItem.Name)
	assert.Equal(t, "Flan", items[1].MenuItem.Name)
}

func TestStatusVocabulary(t *testing.T) {
	tests := map[string]domain.Status{
		"pendiente": domain.StatusPending,
		"aceptado":  domain.StatusCooking,
		"listo":     domain.StatusReady,
		"entregado": domain.StatusServed,
		"Cooking":   domain.StatusCooking,
		"":          domain.StatusPending,
		"???":       domain.StatusPending,
	}
	for raw, want := range tests {
		assert.Equalf(t, want, parseSheetStatus(raw), "raw=%q", raw)
	}
}

func TestEncodeOrderPayload(t *testing.T) {
	o := domain.Order{
		ID:          "665123",
		TableNumber: "4",
		Status:      domain.StatusCooking,
		CreatedAt:   now,
		AcceptedAt:  now.Add(5 * time.Minute),
		Diners:      3,
		TotalPrice:  31,
		Items: []domain.OrderLineItem{
			{MenuItem: domain.MenuItem{Name: "Patatas Bravas"}, Quantity: 2, Notes: "sin cebolla"},
			{MenuItem: domain.MenuItem{Name: "Paella de Marisco"}, Quantity: 1},
		},
	}

	p := encodeOrder(o, domain.StatusReady)
	assert.Equal(t, "665123", p.OrderID)
	assert.Equal(t, "2x Patatas Bravas, 1x Paella de Marisco", p.Items)
	assert.Equal(t, "entregado", p.Status)
	assert.Equal(t, "16:00", p.OrderedAt)
	// Previously recorded transition times ride along so the relay's
	// append does not wipe them.
	assert.Equal(t, "16:05", p.AcceptedAt)
	assert.Equal(t, "", p.ServedAt)
	assert.Equal(t, "sin cebolla", p.Notes)
	assert.Equal(t, "3", p.Diners)
	assert.Equal(t, "31.00", p.Total)
}

func TestEncodeOrderStatusMapping(t *testing.T) {
	o := domain.Order{ID: "1", Items: []domain.OrderLineItem{{MenuItem: domain.MenuItem{Name: "Flan"}, Quantity: 1}}}
	assert.Equal(t, "pendiente", encodeOrder(o, domain.StatusPending).Status)
	assert.Equal(t, "aceptado", encodeOrder(o, domain.StatusCooking).Status)
	assert.Equal(t, "entregado", encodeOrder(o, domain.StatusReady).Status)
	assert.Equal(t, "entregado", encodeOrder(o, domain.StatusServed).Status)
}

func TestParseMenuRow(t *testing.T) {
	row := map[string]string{
		"nombre":         "Patatas Bravas",
		"descripcion":    "Con salsa picante",
		"precio":         "6.50€",
		"categoría":      "Tapas",
		"alergenos":      "ninguno",
		"tipo_dieta":     "vegetariano",
		"disponibilidad": "TRUE",
		"ingredientes":   "patata, tomate",
	}

	item, ok := parseMenuRow(row, 0)
	require.True(t, ok)
	assert.Equal(t, "menu_0", item.ID)
	assert.InDelta(t, 6.5, item.Price, 0.001)
	assert.Equal(t, "Tapas", item.Category)
	assert.Empty(t, item.Allergens)
	assert.Equal(t, []string{"vegetariano"}, item.Dietary)
	assert.True(t, item.Available)
	assert.Equal(t, []string{"patata", "tomate"}, item.Ingredients)
}

func TestParseMenuRowDropsNameless(t *testing.T) {
	_, ok := parseMenuRow(map[string]string{"precio": "5"}, 0)
	assert.False(t, ok)
}

func TestParseSheetBool(t *testing.T) {
	for _, yes := range []string{"true", "Si", "sí", "YES", "1", "x", "ok"} {
		assert.Truef(t, parseSheetBool(yes), "value=%q", yes)
	}
	for _, no := range []string{"", "false", "no", "0"} {
		assert.Falsef(t, parseSheetBool(no), "value=%q", no)
	}
}

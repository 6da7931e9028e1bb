package sheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda-system/internal/domain"
)

const ordersCSV = `numero_pedido,numero_mesa,pedido,hora_pedido,hora_aceptado,hora_entrega,estado,notas_especiales,comensales,total_pedido
665001,4,"2x Patatas Bravas, 1x Paella de Marisco",14:30,,,pendiente,,3,31.00
665002,7,1x Gilda,14:32,,,pendiente,,2,2.50
,9,1x Flan,14:33,,,pendiente,,1,4.00
665001,4,"2x Patatas Bravas, 1x Paella de Marisco",14:30,14:35,,aceptado,,3,31.00
`

func newTestStore(t *testing.T, csv string) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csv))
	}))
	t.Cleanup(srv.Close)
	s := New(srv.URL, srv.URL, srv.URL)
	s.now = func() time.Time { return time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC) }
	return s
}

func TestFetchOrdersLastRowWins(t *testing.T) {
	s := newTestStore(t, ordersCSV)

	orders, err := s.FetchOrders(context.Background())
	require.NoError(t, err)

	// The idless row is dropped; 665001 appears once, with the state of
	// its last appended row.
	require.Len(t, orders, 2)
	assert.Equal(t, "665001", orders[0].ID)
	assert.Equal(t, domain.StatusCooking, orders[0].Status)
	assert.False(t, orders[0].AcceptedAt.IsZero())
	assert.Equal(t, "665002", orders[1].ID)
}

func TestFetchOrdersTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	s := New(srv.URL, srv.URL, srv.URL)

	_, err := s.FetchOrders(context.Background())
	assert.Error(t, err)
}

func TestSubmitOrderPostsFullRow(t *testing.T) {
	var got orderPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()
	s := New(srv.URL, srv.URL, srv.URL)

	order := domain.Order{
		ID:          "665003",
		TableNumber: "2",
		Status:      domain.StatusPending,
		CreatedAt:   time.Date(2026, 8, 31, 14, 40, 0, 0, time.UTC),
		Diners:      2,
		TotalPrice:  9,
		Items:       []domain.OrderLineItem{{MenuItem: domain.MenuItem{Name: "Gilda"}, Quantity: 2}},
	}
	require.NoError(t, s.SubmitOrder(context.Background(), order))
	assert.Equal(t, "665003", got.OrderID)
	assert.Equal(t, "pendiente", got.Status)
	assert.Equal(t, "2x Gilda", got.Items)
}

func TestUpdateStatusNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	s := New(srv.URL, srv.URL, srv.URL)

	order := domain.Order{ID: "1", Items: []domain.OrderLineItem{{MenuItem: domain.MenuItem{Name: "Flan"}, Quantity: 1}}}
	assert.Error(t, s.UpdateStatus(context.Background(), order, domain.StatusCooking))
}

func TestFetchMenu(t *testing.T) {
	menuCSV := `nombre,descripcion,precio,categoría,alergenos,tipo_dieta,disponibilidad,ingredientes
Patatas Bravas,Con salsa picante,6.50€,Tapas,ninguno,,TRUE,"patata, tomate"
,,,,,,,
Gilda,Clásica,2.50,Tapas,pescado,,TRUE,
`
	s := newTestStore(t, menuCSV)

	items, err := s.FetchMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Patatas Bravas", items[0].Name)
	assert.Equal(t, []string{"pescado"}, items[1].Allergens)
}

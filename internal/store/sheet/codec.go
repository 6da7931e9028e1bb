package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"comanda-system/internal/domain"
)

// Sheet column vocabulary. The order sheet is Spanish; the application
// vocabulary is English. The mapping lives here and only here.
const (
	colOrderID    = "numero_pedido"
	colTable      = "numero_mesa"
	colTableAlt   = "número_mesa"
	colItems      = "pedido"
	colOrderedAt  = "hora_pedido"
	colAcceptedAt = "hora_aceptado"
	colServedAt   = "hora_entrega"
	colStatus     = "estado"
	colNotes      = "notas_especiales"
	colDiners     = "comensales"
	colTotal      = "total_pedido"
)

var sheetToStatus = map[string]domain.Status{
	"pendiente": domain.StatusPending,
	"pending":   domain.StatusPending,
	"aceptado":  domain.StatusCooking,
	"cooking":   domain.StatusCooking,
	"listo":     domain.StatusReady,
	"ready":     domain.StatusReady,
	"entregado": domain.StatusServed,
	"served":    domain.StatusServed,
}

// statusToSheet maps the two statuses the kitchen ever writes. A
// completed ticket is recorded as "entregado", matching what the relay's
// workflow expects.
var statusToSheet = map[domain.Status]string{
	domain.StatusPending: "pendiente",
	domain.StatusCooking: "aceptado",
	domain.StatusReady:   "entregado",
	domain.StatusServed:  "entregado",
}

func parseSheetStatus(raw string) domain.Status {
	if st, ok := sheetToStatus[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st
	}
	return domain.StatusPending
}

// parseOrderRow decodes one sheet row into an order. A row without an id
// or without a single parseable item is malformed and reported as an
// error; the caller drops it without touching other rows.
func parseOrderRow(row map[string]string, now time.Time) (domain.Order, error) {
	id := strings.TrimSpace(row[colOrderID])
	if id == "" {
		return domain.Order{}, fmt.Errorf("order row missing %s", colOrderID)
	}

	createdAt := parseClock(row[colOrderedAt], now)
	items := parseItemList(row[colItems], row[colNotes], createdAt)
	if len(items) == 0 {
		return domain.Order{}, fmt.Errorf("order %s: no parseable items in %q", id, row[colItems])
	}

	table := row[colTable]
	if table == "" {
		table = row[colTableAlt]
	}
	if table == "" {
		table = "?"
	}

	diners, _ := strconv.Atoi(strings.TrimSpace(row[colDiners]))
	if diners <= 0 {
		diners = 1
	}
	total, _ := strconv.ParseFloat(strings.TrimSpace(row[colTotal]), 64)

	return domain.Order{
		ID:          id,
		TableNumber: table,
		Items:       items,
		Status:      parseSheetStatus(row[colStatus]),
		CreatedAt:   createdAt,
		AcceptedAt:  parseOptionalClock(row[colAcceptedAt], now),
		ServedAt:    parseOptionalClock(row[colServedAt], now),
		ClientName:  "Cliente",
		Diners:      diners,
		TotalPrice:  total,
	}, nil
}

// parseItemList decodes the "2x Bravas, 1x Paella" column. Entries that
// do not fit the "Nx name" shape are skipped individually.
func parseItemList(raw, notes string, createdAt time.Time) []domain.OrderLineItem {
	var items []domain.OrderLineItem
	for _, part := range strings.Split(raw, ",") {
		qtyStr, name, ok := strings.Cut(strings.TrimSpace(part), "x ")
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
		if err != nil || qty <= 0 {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		items = append(items, domain.OrderLineItem{
			ID: uuid.NewString(),
			// The sheet only stores names; price and category belong to
			// the menu and are not recoverable from an order row.
			MenuItem:  domain.MenuItem{ID: name, Name: name, Available: true, Category: "General"},
			Quantity:  qty,
			Notes:     notes,
			CreatedAt: createdAt,
		})
	}
	return items
}

// parseClock reads an "HH:MM" sheet cell, anchoring it to now's date.
// The sheet stores only times of day; orders live within one
// restaurant-day.
func parseClock(raw string, now time.Time) time.Time {
	t := parseOptionalClock(raw, now)
	if t.IsZero() {
		return now
	}
	return t
}

func parseOptionalClock(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	clock, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location())
}

// orderPayload is the webhook body. The relay appends a complete row per
// write, so every field is sent every time, including previously
// recorded transition times so an update does not wipe them.
type orderPayload struct {
	OrderID    string `json:"Numero_pedido"`
	Table      string `json:"numero_mesa"`
	Items      string `json:"Pedido"`
	OrderedAt  string `json:"hora_pedido"`
	AcceptedAt string `json:"hora_aceptado"`
	ServedAt   string `json:"hora_entrega"`
	Status     string `json:"estado"`
	Notes      string `json:"notas_especiales"`
	Diners     string `json:"comensales"`
	Total      string `json:"total_pedido"`
}

func encodeOrder(o domain.Order, status domain.Status) orderPayload {
	var names []string
	var notes []string
	for _, it := range o.Items {
		names = append(names, fmt.Sprintf("%dx %s", it.Quantity, it.MenuItem.Name))
		if strings.TrimSpace(it.Notes) != "" {
			notes = append(notes, it.Notes)
		}
	}
	return orderPayload{
		OrderID:    o.ID,
		Table:      o.TableNumber,
		Items:      strings.Join(names, ", "),
		OrderedAt:  formatClock(o.CreatedAt),
		AcceptedAt: formatClock(o.AcceptedAt),
		ServedAt:   formatClock(o.ServedAt),
		Status:     statusToSheet[status],
		Notes:      strings.Join(notes, ". "),
		Diners:     strconv.Itoa(o.Diners),
		Total:      fmt.Sprintf("%.2f", o.TotalPrice),
	}
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04")
}

// parseMenuRow decodes one menu sheet row; rows without a name are
// dropped by the caller.
func parseMenuRow(row map[string]string, index int) (domain.MenuItem, bool) {
	name := strings.TrimSpace(row["nombre"])
	if name == "" {
		return domain.MenuItem{}, false
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(row["precio"]), "€")), 64)
	if err != nil {
		price = 0
	}

	category := row["categoría"]
	if category == "" {
		category = row["categoria"]
	}
	if category == "" {
		category = "General"
	}

	available := true
	if v := strings.TrimSpace(row["disponibilidad"]); v != "" {
		available = parseSheetBool(v)
	}

	return domain.MenuItem{
		ID:          fmt.Sprintf("menu_%d", index),
		Name:        name,
		Description: row["descripcion"],
		Price:       price,
		Category:    category,
		Allergens:   splitList(row["alergenos"], "ninguno"),
		Dietary:     splitList(row["tipo_dieta"], ""),
		Available:   available,
		Ingredients: splitList(row["ingredientes"], ""),
	}, true
}

// parseSheetBool accepts the assortment of yes-markers restaurant staff
// actually type into spreadsheet cells.
func parseSheetBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "si", "sí", "yes", "1", "s", "y", "ok", "x":
		return true
	}
	return false
}

func splitList(raw, none string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || (none != "" && strings.EqualFold(part, none)) {
			continue
		}
		out = append(out, part)
	}
	return out
}

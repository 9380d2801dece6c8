// Package ledger attributes manifest cartons to customers and counts loaded
// cartons per customer. A Ledger is derived from the manifest and rebuilt
// wholesale whenever the session starts over.
package ledger

import (
	"dockload/internal/features/manifest/domain"
)

// Summary is one customer's loading progress.
type Summary struct {
	CustomerName string `json:"customer_name"`
	Destination  string `json:"destination,omitempty"`
	Expected     int    `json:"expected"`
	Scanned      int    `json:"scanned"`
}

// Complete reports whether every carton of the customer is loaded.
func (s Summary) Complete() bool {
	return s.Scanned >= s.Expected
}

// Ledger maps cartons to their owning customer.
type Ledger struct {
	owners    map[string]string
	customers map[string]*Summary
	order     []string
}

// Build indexes the manifest: every carton of a single-customer manifest
// belongs to the primary customer, consolidated loads follow their groups.
func Build(m *domain.Manifest) *Ledger {
	l := &Ledger{
		owners:    make(map[string]string),
		customers: make(map[string]*Summary),
	}

	if m.MultiCustomer() {
		for _, g := range m.CustomerGroups {
			l.add(g.CustomerName, g.Destination, g.CartonIDs)
		}
		return l
	}

	l.add(m.PrimaryCustomerName, m.Destination, m.CartonIDs)
	return l
}

func (l *Ledger) add(customer, destination string, cartons []string) {
	summary, ok := l.customers[customer]
	if !ok {
		summary = &Summary{CustomerName: customer, Destination: destination}
		l.customers[customer] = summary
		l.order = append(l.order, customer)
	}
	for _, id := range cartons {
		if _, taken := l.owners[id]; taken {
			continue
		}
		l.owners[id] = customer
		summary.Expected++
	}
}

// Record counts an accepted carton and returns its customer's progress.
// ok is false for cartons the manifest does not list.
func (l *Ledger) Record(cartonID string) (Summary, bool) {
	customer, ok := l.owners[domain.NormalizeID(cartonID)]
	if !ok {
		return Summary{}, false
	}
	summary := l.customers[customer]
	if summary.Scanned < summary.Expected {
		summary.Scanned++
	}
	return *summary, true
}

// CustomerOf returns the customer owning the carton.
func (l *Ledger) CustomerOf(cartonID string) (string, bool) {
	customer, ok := l.owners[domain.NormalizeID(cartonID)]
	return customer, ok
}

// IsComplete reports whether every carton of customer has been recorded.
func (l *Ledger) IsComplete(customer string) bool {
	summary, ok := l.customers[customer]
	return ok && summary.Complete()
}

// Summaries returns per-customer progress in manifest order.
func (l *Ledger) Summaries() []Summary {
	out := make([]Summary, 0, len(l.order))
	for _, customer := range l.order {
		out = append(out, *l.customers[customer])
	}
	return out
}

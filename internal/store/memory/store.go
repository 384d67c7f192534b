// Package memory keeps every repository in process behind one mutex. Each
// method holds the lock for its whole body, which gives the same
// all-or-nothing and serialised-per-job behaviour the Postgres repositories
// get from transactions and row locks. It backs service tests and local runs
// without a database.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/modules/customer"
	"github.com/georgemunganga/printpress-backend/internal/modules/expense"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/modules/payment"
	"github.com/georgemunganga/printpress-backend/internal/modules/user"
)

// Store implements the user, customer, job, payment, inventory, expense and
// notification repositories.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users         map[uuid.UUID]*user.User
	customers     map[uuid.UUID]*customer.Customer
	jobs          map[uuid.UUID]*job.Job
	materials     []*job.MaterialUsed
	waste         []*job.WasteExpense
	payments      []*payment.Payment
	items         map[uuid.UUID]*inventory.Item
	expenses      map[uuid.UUID]*expense.Expense
	notifications []*notification.Notification
}

var (
	_ user.Repository         = (*Store)(nil)
	_ customer.Repository     = (*Store)(nil)
	_ job.Repository          = (*Store)(nil)
	_ payment.Repository      = (*Store)(nil)
	_ inventory.Repository    = (*Store)(nil)
	_ expense.Repository      = (*Store)(nil)
	_ notification.Repository = (*Store)(nil)
)

func New() *Store {
	return &Store{
		now:       time.Now,
		users:     map[uuid.UUID]*user.User{},
		customers: map[uuid.UUID]*customer.Customer{},
		jobs:      map[uuid.UUID]*job.Job{},
		items:     map[uuid.UUID]*inventory.Item{},
		expenses:  map[uuid.UUID]*expense.Expense{},
	}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// page applies limit/offset after sorting.
func page[T any](all []T, offset, limit int) []T {
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

func sortBy[T any](s []T, less func(a, b T) bool) {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
}

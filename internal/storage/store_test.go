package storage_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/storage"
)

func ticket(id, key string, lastActivity time.Time) domain.SupportTicket {
	return domain.SupportTicket{ID: id, CustomerKey: key, LastActivityAt: lastActivity}
}

func TestGroupByCustomer(t *testing.T) {
	now := time.Now()
	tickets := []domain.SupportTicket{
		ticket("t1", "email:a@x.com", now),
		ticket("t2", "email:b@y.com", now),
		ticket("t3", "email:a@x.com", now.Add(-time.Hour)),
		ticket("t4", "", now),
	}

	grouped := storage.GroupByCustomer(tickets)

	wantKeys := map[string][]string{
		"email:a@x.com": {"t1", "t3"},
		"email:b@y.com": {"t2"},
		"unknown":       {"t4"},
	}
	got := map[string][]string{}
	for key, group := range grouped {
		for _, tk := range group {
			got[key] = append(got[key], tk.ID)
		}
	}
	if diff := cmp.Diff(wantKeys, got); diff != "" {
		t.Fatalf("grouping mismatch (-want +got):\n%s", diff)
	}
}

func TestStaleKeys(t *testing.T) {
	desired := storage.GroupByCustomer([]domain.SupportTicket{
		ticket("t1", "email:a@x.com", time.Now()),
	})
	existing := []string{"email:a@x.com", "email:gone@x.com", "fallback:old-session"}

	stale := storage.StaleKeys(existing, desired)
	want := []string{"email:gone@x.com", "fallback:old-session"}
	if diff := cmp.Diff(want, stale); diff != "" {
		t.Fatalf("stale keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByActivity(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tickets := []domain.SupportTicket{
		ticket("old", "k1", base),
		ticket("new", "k2", base.Add(48*time.Hour)),
		ticket("mid", "k3", base.Add(24*time.Hour)),
	}
	storage.SortByActivity(tickets)

	var order []string
	for _, tk := range tickets {
		order = append(order, tk.ID)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old"}, order); diff != "" {
		t.Fatalf("sort order mismatch (-want +got):\n%s", diff)
	}
}

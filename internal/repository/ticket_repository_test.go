package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

func TestBuildSearchQuery_NoFilters(t *testing.T) {
	listSQL, countSQL, args := buildSearchQuery(TicketSearch{Limit: 40})

	if !strings.Contains(listSQL, "WHERE 1=1") {
		t.Errorf("expected no-op predicate, got %q", listSQL)
	}
	if strings.Contains(listSQL, "DISTINCT t.id, ") || strings.Contains(listSQL, "SELECT DISTINCT") {
		t.Errorf("no search term must mean no DISTINCT select: %q", listSQL)
	}
	if !strings.Contains(listSQL, "ORDER BY t.updated_at DESC LIMIT 40 OFFSET 0") {
		t.Errorf("unexpected ordering/paging: %q", listSQL)
	}
	if !strings.Contains(countSQL, "COUNT(DISTINCT t.id)") {
		t.Errorf("count must de-duplicate: %q", countSQL)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestBuildClauses_Order(t *testing.T) {
	owner := int64(5)
	status := domain.TicketStatusOpen
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 1).Add(-time.Millisecond)

	clauses, args, messageJoin := buildClauses(TicketSearch{
		QueueIDs:       []int64{1, 2},
		RestrictQueues: true,
		OwnerID:        &owner,
		Status:         &status,
		CreatedFrom:    &from,
		CreatedTo:      &to,
		SearchTerm:     "  MARIA ",
		UnreadOnly:     true,
	})

	want := []string{
		"t.queue_id IN ($1,$2)",
		"(t.user_id = $3 OR t.status = $4)",
		"t.status = $5",
		"t.created_at >= $6",
		"t.created_at <= $7",
		"(LOWER(c.name) LIKE $8 OR c.number LIKE $8 OR m.id IS NOT NULL)",
		"t.unread_messages > 0",
	}
	if len(clauses) != len(want) {
		t.Fatalf("clauses = %v, want %v", clauses, want)
	}
	for i := range want {
		if clauses[i] != want[i] {
			t.Errorf("clause[%d] = %q, want %q", i, clauses[i], want[i])
		}
	}

	if args[7] != "%maria%" {
		t.Errorf("search term must be trimmed and lowered, got %v", args[7])
	}
	if args[3] != domain.TicketStatusPending {
		t.Errorf("ownership fallback must match pending, got %v", args[3])
	}
	if !strings.Contains(messageJoin, "LEFT JOIN messages m ON m.ticket_id = t.id AND LOWER(m.body) LIKE $8") {
		t.Errorf("unexpected message join: %q", messageJoin)
	}
}

func TestBuildSearchQuery_SearchTermAddsDistinct(t *testing.T) {
	listSQL, countSQL, args := buildSearchQuery(TicketSearch{SearchTerm: "maria", Limit: 40})

	if !strings.HasPrefix(listSQL, "SELECT DISTINCT ") {
		t.Errorf("search join requires DISTINCT rows: %q", listSQL)
	}
	if !strings.Contains(countSQL, "LEFT JOIN messages") {
		t.Errorf("count must see the same join: %q", countSQL)
	}
	if len(args) != 1 || args[0] != "%maria%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSearchQuery_BlankSearchIgnored(t *testing.T) {
	listSQL, _, args := buildSearchQuery(TicketSearch{SearchTerm: "   ", Limit: 40})

	if strings.Contains(listSQL, "LEFT JOIN messages") {
		t.Errorf("blank search must not join messages: %q", listSQL)
	}
	if len(args) != 0 {
		t.Errorf("blank search must add no args: %v", args)
	}
}

func TestBuildSearchQuery_PaginationDefaults(t *testing.T) {
	listSQL, _, _ := buildSearchQuery(TicketSearch{Limit: 40, Offset: 80})
	if !strings.Contains(listSQL, "LIMIT 40 OFFSET 80") {
		t.Errorf("unexpected paging: %q", listSQL)
	}

	listSQL, _, _ = buildSearchQuery(TicketSearch{Offset: -5})
	if !strings.Contains(listSQL, "LIMIT 20 OFFSET 0") {
		t.Errorf("defaults not applied: %q", listSQL)
	}
}

func TestBuildClauses_SentinelQueueYieldsImpossibleMatch(t *testing.T) {
	clauses, args, _ := buildClauses(TicketSearch{QueueIDs: []int64{0}, RestrictQueues: true})

	if clauses[0] != "t.queue_id IN ($1)" {
		t.Errorf("clause = %q", clauses[0])
	}
	if args[0] != int64(0) {
		t.Errorf("sentinel arg = %v", args[0])
	}
}

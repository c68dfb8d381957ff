package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/chat-ticketing/internal/domain"
	"github.com/spec-kit/chat-ticketing/internal/repository"
	apperrors "github.com/spec-kit/chat-ticketing/pkg/util"
)

// fakeUserRepo implements repository.UserRepository for tests.
type fakeUserRepo struct {
	users map[int64]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, _ *domain.User) error { return nil }
func (f *fakeUserRepo) Update(_ context.Context, _ *domain.User) error { return nil }
func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}
func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeUserRepo) SetQueues(_ context.Context, _ int64, _ []int64) error { return nil }

// fakeTicketRepo records the search it receives and returns canned results.
type fakeTicketRepo struct {
	lastSearch repository.TicketSearch
	tickets    []domain.Ticket
	count      int
	unread     int
	err        error
}

func (f *fakeTicketRepo) Create(_ context.Context, _ *domain.Ticket) error { return nil }
func (f *fakeTicketRepo) Update(_ context.Context, _ *domain.Ticket) error { return nil }
func (f *fakeTicketRepo) GetByID(_ context.Context, _ int64) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeTicketRepo) Search(_ context.Context, search repository.TicketSearch) ([]domain.Ticket, int, error) {
	f.lastSearch = search
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.tickets, f.count, nil
}
func (f *fakeTicketRepo) UnreadTotal(_ context.Context, search repository.TicketSearch) (int, error) {
	f.lastSearch = search
	return f.unread, nil
}
func (f *fakeTicketRepo) RecordMessage(_ context.Context, _ int64, _ string, _ bool) error {
	return nil
}
func (f *fakeTicketRepo) MarkRead(_ context.Context, _ int64) error { return nil }

func newQueryFixture(users ...*domain.User) (*TicketQueryService, *fakeTicketRepo) {
	userRepo := &fakeUserRepo{users: map[int64]*domain.User{}}
	for _, user := range users {
		userRepo.users[user.ID] = user
	}
	ticketRepo := &fakeTicketRepo{}
	return NewTicketQueryService(userRepo, ticketRepo, nil), ticketRepo
}

func domainErrCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

func TestListTickets_UserNotFound(t *testing.T) {
	svc, _ := newQueryFixture()

	_, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 99})
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainErrCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestListTickets_OrdinaryUserIgnoresCallerQueues(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1, 2}})

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, QueueIDs: []int64{3, 4}}); err != nil {
		t.Fatal(err)
	}
	if !repo.lastSearch.RestrictQueues {
		t.Fatal("ordinary user search must restrict queues")
	}
	if !reflect.DeepEqual(repo.lastSearch.QueueIDs, []int64{1, 2}) {
		t.Errorf("QueueIDs = %v, want [1 2]", repo.lastSearch.QueueIDs)
	}
}

func TestListTickets_NoQueuesMeansSentinelScope(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser})

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, ShowAll: true}); err != nil {
		t.Fatal(err)
	}
	if !repo.lastSearch.RestrictQueues || !reflect.DeepEqual(repo.lastSearch.QueueIDs, []int64{0}) {
		t.Errorf("expected sentinel queue scope, got %+v", repo.lastSearch)
	}
}

func TestListTickets_ElevatedQueueOverride(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 1, Profile: domain.ProfileAdmin, QueueIDs: []int64{9}})

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 1, QueueIDs: []int64{3, 4}}); err != nil {
		t.Fatal(err)
	}
	if !repo.lastSearch.RestrictQueues || !reflect.DeepEqual(repo.lastSearch.QueueIDs, []int64{3, 4}) {
		t.Errorf("override not applied: %+v", repo.lastSearch)
	}

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 1}); err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.RestrictQueues {
		t.Errorf("elevated user without explicit queues must see all queues: %+v", repo.lastSearch)
	}
}

func TestListTickets_OwnershipClauseToggle(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1}})

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7}); err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.OwnerID == nil || *repo.lastSearch.OwnerID != 7 {
		t.Errorf("default listing must carry ownership clause, got %+v", repo.lastSearch.OwnerID)
	}

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, ShowAll: true}); err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.OwnerID != nil {
		t.Error("showAll must drop ownership clause")
	}
	if !repo.lastSearch.RestrictQueues {
		t.Error("showAll must not drop the queue clause for ordinary users")
	}
}

func TestListTickets_FilterMapping(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1}})

	_, err := svc.ListTickets(context.Background(), ListTicketsInput{
		UserID:     7,
		Status:     "pending",
		Search:     "MARIA ",
		UnreadOnly: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.Status == nil || *repo.lastSearch.Status != domain.TicketStatusPending {
		t.Errorf("status clause missing: %+v", repo.lastSearch.Status)
	}
	if repo.lastSearch.SearchTerm != "MARIA " {
		t.Errorf("search term should pass through raw, got %q", repo.lastSearch.SearchTerm)
	}
	if !repo.lastSearch.UnreadOnly {
		t.Error("unread clause missing")
	}
}

func TestListTickets_DateInterval(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1}})

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, Date: "2024-05-01"}); err != nil {
		t.Fatal(err)
	}

	wantFrom := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	wantTo := time.Date(2024, 5, 1, 23, 59, 59, 999000000, time.Local)
	if repo.lastSearch.CreatedFrom == nil || !repo.lastSearch.CreatedFrom.Equal(wantFrom) {
		t.Errorf("CreatedFrom = %v, want %v", repo.lastSearch.CreatedFrom, wantFrom)
	}
	if repo.lastSearch.CreatedTo == nil || !repo.lastSearch.CreatedTo.Equal(wantTo) {
		t.Errorf("CreatedTo = %v, want %v", repo.lastSearch.CreatedTo, wantTo)
	}
}

func TestListTickets_InvalidDate(t *testing.T) {
	svc, _ := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1}})

	_, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, Date: "01/05/2024"})
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainErrCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", code)
	}
}

func TestListTickets_Pagination(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1}})

	repo.tickets = make([]domain.Ticket, 40)
	repo.count = 100
	page, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.Limit != 40 || repo.lastSearch.Offset != 0 {
		t.Errorf("page 1: limit/offset = %d/%d", repo.lastSearch.Limit, repo.lastSearch.Offset)
	}
	if !page.HasMore {
		t.Error("100 matches with 40 returned must have more")
	}

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, Page: 2}); err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.Offset != 40 {
		t.Errorf("page 2 offset = %d, want 40", repo.lastSearch.Offset)
	}

	repo.tickets = make([]domain.Ticket, 20)
	page, err = svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, Page: 3})
	if err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.Offset != 80 {
		t.Errorf("page 3 offset = %d, want 80", repo.lastSearch.Offset)
	}
	if page.HasMore {
		t.Error("final partial page must not report more")
	}

	repo.tickets = nil
	page, err = svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, Page: 9})
	if err != nil {
		t.Fatal(err)
	}
	if page.HasMore || len(page.Tickets) != 0 {
		t.Errorf("past-the-end page = %+v", page)
	}
}

func TestListTickets_PageDefaultsToFirst(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1}})

	if _, err := svc.ListTickets(context.Background(), ListTicketsInput{UserID: 7, Page: 0}); err != nil {
		t.Fatal(err)
	}
	if repo.lastSearch.Offset != 0 {
		t.Errorf("offset = %d, want 0", repo.lastSearch.Offset)
	}
}

func TestUnreadTotal_UsesDefaultVisibility(t *testing.T) {
	svc, repo := newQueryFixture(&domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1, 2}})
	repo.unread = 13

	total, err := svc.UnreadTotal(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if total != 13 {
		t.Errorf("total = %d, want 13", total)
	}
	if repo.lastSearch.OwnerID == nil || *repo.lastSearch.OwnerID != 7 {
		t.Error("badge must honor ownership clause")
	}
	if !repo.lastSearch.RestrictQueues {
		t.Error("badge must honor queue scope")
	}
}

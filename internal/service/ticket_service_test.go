package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/chat-ticketing/internal/domain"
	"github.com/spec-kit/chat-ticketing/internal/repository"
)

type memTicketRepo struct {
	fakeTicketRepo
	byID map[int64]*domain.Ticket

	recordedPreview string
	recordedFromMe  bool
	markedRead      int64
	updated         *domain.Ticket
}

func (m *memTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (m *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	m.updated = ticket
	return nil
}

func (m *memTicketRepo) RecordMessage(_ context.Context, _ int64, preview string, fromMe bool) error {
	m.recordedPreview = preview
	m.recordedFromMe = fromMe
	return nil
}

func (m *memTicketRepo) MarkRead(_ context.Context, ticketID int64) error {
	m.markedRead = ticketID
	return nil
}

type memContactRepo struct {
	contacts map[int64]*domain.Contact
}

func (m *memContactRepo) Create(_ context.Context, _ *domain.Contact) error { return nil }
func (m *memContactRepo) GetByID(_ context.Context, id int64) (*domain.Contact, error) {
	contact, ok := m.contacts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return contact, nil
}
func (m *memContactRepo) GetByNumber(_ context.Context, _ string) (*domain.Contact, error) {
	return nil, pgx.ErrNoRows
}

type memQueueRepo struct {
	queues map[int64]*domain.Queue
}

func (m *memQueueRepo) Create(_ context.Context, _ *domain.Queue) error { return nil }
func (m *memQueueRepo) GetByID(_ context.Context, id int64) (*domain.Queue, error) {
	queue, ok := m.queues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return queue, nil
}
func (m *memQueueRepo) List(_ context.Context) ([]domain.Queue, error) { return nil, nil }

type memWhatsappRepo struct {
	connections map[int64]*domain.Whatsapp
}

func (m *memWhatsappRepo) GetByID(_ context.Context, id int64) (*domain.Whatsapp, error) {
	whatsapp, ok := m.connections[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return whatsapp, nil
}
func (m *memWhatsappRepo) GetDefault(_ context.Context) (*domain.Whatsapp, error) {
	for _, whatsapp := range m.connections {
		if whatsapp.IsDefault {
			return whatsapp, nil
		}
	}
	return nil, pgx.ErrNoRows
}
func (m *memWhatsappRepo) List(_ context.Context) ([]domain.Whatsapp, error) { return nil, nil }

type memMessageRepo struct {
	created    []*domain.Message
	markedRead int64
}

func (m *memMessageRepo) Create(_ context.Context, message *domain.Message) error {
	message.ID = int64(len(m.created) + 1)
	m.created = append(m.created, message)
	return nil
}
func (m *memMessageRepo) ListByTicket(_ context.Context, _ int64, _, _ int) ([]domain.Message, error) {
	return nil, nil
}
func (m *memMessageRepo) MarkReadByTicket(_ context.Context, ticketID int64) error {
	m.markedRead = ticketID
	return nil
}

func newTicketFixture() (*TicketService, *memTicketRepo, *memMessageRepo) {
	owner := int64(5)
	ticketRepo := &memTicketRepo{byID: map[int64]*domain.Ticket{
		1: {ID: 1, Status: domain.TicketStatusOpen, ContactID: 10, WhatsappID: 1, UserID: &owner},
	}}
	messageRepo := &memMessageRepo{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   ticketRepo,
		ContactRepo:  &memContactRepo{contacts: map[int64]*domain.Contact{10: {ID: 10, Name: "Maria Silva", Number: "5511999"}}},
		QueueRepo:    &memQueueRepo{queues: map[int64]*domain.Queue{3: {ID: 3, Name: "Support"}}},
		WhatsappRepo: &memWhatsappRepo{connections: map[int64]*domain.Whatsapp{1: {ID: 1, Name: "Main", IsDefault: true}}},
		MessageRepo:  messageRepo,
	})
	return svc, ticketRepo, messageRepo
}

func TestCreateTicket_DefaultsAndKey(t *testing.T) {
	svc, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), 1, TicketCreateInput{ContactID: 10, WhatsappID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want open", ticket.Status)
	}
	if !strings.HasPrefix(ticket.ExternalKey, "TCK-") {
		t.Errorf("external key = %q", ticket.ExternalKey)
	}
}

func TestCreateTicket_FallsBackToDefaultConnection(t *testing.T) {
	svc, _, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), 1, TicketCreateInput{ContactID: 10})
	if err != nil {
		t.Fatal(err)
	}
	if ticket.WhatsappID != 1 {
		t.Errorf("whatsapp id = %d, want default connection 1", ticket.WhatsappID)
	}
}

func TestCreateTicket_UnknownConnection(t *testing.T) {
	svc, _, _ := newTicketFixture()

	_, err := svc.CreateTicket(context.Background(), 1, TicketCreateInput{ContactID: 10, WhatsappID: 42})
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainErrCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %s", code)
	}
}

func TestCreateTicket_UnknownContact(t *testing.T) {
	svc, _, _ := newTicketFixture()

	_, err := svc.CreateTicket(context.Background(), 1, TicketCreateInput{ContactID: 99, WhatsappID: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainErrCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %s", code)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTicketFixture()

	_, err := svc.UpdateStatus(context.Background(), 1, 1, domain.TicketStatus("archived"))
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainErrCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s", code)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	svc, repo, _ := newTicketFixture()

	ticket, err := svc.UpdateStatus(context.Background(), 1, 1, domain.TicketStatusClosed)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Status != domain.TicketStatusClosed {
		t.Errorf("status = %s", ticket.Status)
	}
	if repo.updated == nil || repo.updated.Status != domain.TicketStatusClosed {
		t.Error("status change not persisted")
	}
}

func TestAppendMessage_InboundBumpsUnread(t *testing.T) {
	svc, repo, messages := newTicketFixture()

	message, err := svc.AppendMessage(context.Background(), 1, "  hello there  ", false)
	if err != nil {
		t.Fatal(err)
	}
	if message.Body != "hello there" {
		t.Errorf("body = %q, want trimmed", message.Body)
	}
	if message.Read {
		t.Error("inbound message must start unread")
	}
	if repo.recordedFromMe {
		t.Error("inbound append must bump unread count")
	}
	if repo.recordedPreview != "hello there" {
		t.Errorf("preview = %q", repo.recordedPreview)
	}
	if len(messages.created) != 1 {
		t.Errorf("messages created = %d", len(messages.created))
	}
}

func TestAppendMessage_OutboundStaysRead(t *testing.T) {
	svc, repo, _ := newTicketFixture()

	message, err := svc.AppendMessage(context.Background(), 1, "on it", true)
	if err != nil {
		t.Fatal(err)
	}
	if !message.Read {
		t.Error("outbound message is read by definition")
	}
	if !repo.recordedFromMe {
		t.Error("outbound append must not bump unread count")
	}
}

func TestAppendMessage_EmptyBody(t *testing.T) {
	svc, _, _ := newTicketFixture()

	_, err := svc.AppendMessage(context.Background(), 1, "   ", false)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainErrCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s", code)
	}
}

func TestMarkRead_ClearsTicketAndMessages(t *testing.T) {
	svc, repo, messages := newTicketFixture()

	if err := svc.MarkRead(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if repo.markedRead != 1 {
		t.Error("ticket unread count not cleared")
	}
	if messages.markedRead != 1 {
		t.Error("message read flags not flipped")
	}
}

func TestTransfer_ValidatesQueue(t *testing.T) {
	svc, repo, _ := newTicketFixture()

	badQueue := int64(99)
	if _, err := svc.Transfer(context.Background(), 1, 1, &badQueue, nil); err == nil {
		t.Fatal("expected error for unknown queue")
	}

	queue := int64(3)
	newOwner := int64(8)
	ticket, err := svc.Transfer(context.Background(), 1, 1, &queue, &newOwner)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.QueueID == nil || *ticket.QueueID != 3 {
		t.Errorf("queue = %v", ticket.QueueID)
	}
	if ticket.UserID == nil || *ticket.UserID != 8 {
		t.Errorf("owner = %v", ticket.UserID)
	}
	if repo.updated == nil {
		t.Error("transfer not persisted")
	}
}

func TestTransfer_QueueOnlyKeepsOwner(t *testing.T) {
	svc, _, _ := newTicketFixture()

	queue := int64(3)
	ticket, err := svc.Transfer(context.Background(), 1, 1, &queue, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.QueueID == nil || *ticket.QueueID != 3 {
		t.Errorf("queue = %v", ticket.QueueID)
	}
	if ticket.UserID == nil || *ticket.UserID != 5 {
		t.Errorf("queue-only transfer must keep the owner, got %v", ticket.UserID)
	}
}

func TestAppendMessage_PreviewKeepsRunesIntact(t *testing.T) {
	svc, repo, _ := newTicketFixture()

	body := strings.Repeat("ã", messagePreviewLength+10)
	if _, err := svc.AppendMessage(context.Background(), 1, body, false); err != nil {
		t.Fatal(err)
	}
	preview := repo.recordedPreview
	if !utf8.ValidString(preview) {
		t.Errorf("preview is not valid UTF-8: %q", preview)
	}
	if got := len([]rune(preview)); got != messagePreviewLength {
		t.Errorf("preview runes = %d, want %d", got, messagePreviewLength)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("long preview must end with ellipsis: %q", preview)
	}
}

var _ repository.TicketRepository = (*memTicketRepo)(nil)

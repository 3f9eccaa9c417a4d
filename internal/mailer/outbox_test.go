package mailer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
	"github.com/yukikurage/survey-api/internal/testutil"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []Message
	failTo string
}

func (m *fakeMailer) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.To == m.failTo {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestDispatcher_DrainRecordsOutcome(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.New(db)
	ctx := context.Background()
	mailer := &fakeMailer{failTo: "broken@x.com"}
	dispatcher := NewDispatcher(repos.Emails, mailer, time.Second)

	ok, err := Enqueue(ctx, repos.Emails, models.EmailKindRegistration, Message{To: "alice@x.com", Subject: "hi", HTMLBody: "<p>hi</p>"})
	require.NoError(t, err)
	bad, err := Enqueue(ctx, repos.Emails, models.EmailKindPasswordReset, Message{To: "broken@x.com", Subject: "hi", HTMLBody: "<p>hi</p>"})
	require.NoError(t, err)

	sent, failed, err := dispatcher.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)

	delivered, err := repos.Emails.FindByID(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusSent, delivered.Status)

	broken, err := repos.Emails.FindByID(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusFailed, broken.Status)
	assert.Equal(t, "mailbox unavailable", broken.LastError)

	// failed rows are not retried
	sent, failed, err = dispatcher.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
}

func TestEnqueue_RolledBackWithTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.New(db)
	ctx := context.Background()
	rollback := errors.New("rollback")

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := Enqueue(ctx, tx.Emails, models.EmailKindRegistration, Message{To: "a@x.com", Subject: "s", HTMLBody: "b"}); err != nil {
			return err
		}
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	pending, err := repos.Emails.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDispatcher_RunDeliversOnNudge(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.New(db)
	mailer := &fakeMailer{}
	dispatcher := NewDispatcher(repos.Emails, mailer, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(done)
	}()

	_, err := Enqueue(context.Background(), repos.Emails, models.EmailKindRegistration, Message{To: "a@x.com", Subject: "s", HTMLBody: "b"})
	require.NoError(t, err)
	dispatcher.Nudge()

	assert.Eventually(t, func() bool { return mailer.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestRenderer(t *testing.T) {
	renderer := Renderer{ProjectName: "Survey API", BaseURI: "http://localhost:8080", ResetExpire: 48 * time.Hour}

	msg, err := renderer.NewAccount("alice@x.com", "alice", "1234")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", msg.To)
	assert.Contains(t, msg.HTMLBody, "http://localhost:8080/api/v1/auth/confirm-registration/1234")

	msg, err = renderer.PasswordReset("alice@x.com", "<b>alice</b>", "tok.en.value")
	require.NoError(t, err)
	assert.Contains(t, msg.HTMLBody, "tok.en.value")
	assert.Contains(t, msg.HTMLBody, "48 hours")
	assert.NotContains(t, msg.HTMLBody, "<b>alice</b>")
}

func TestCompose_StripsHeaderInjection(t *testing.T) {
	raw := string(compose("noreply@x.com", Message{To: "a@x.com", Subject: "hi\r\nBcc: evil@x.com", HTMLBody: "<p>x</p>"}))
	assert.Contains(t, raw, "Subject: hiBcc: evil@x.com\r\n")
	assert.Equal(t, 1, strings.Count(raw, "Bcc"))
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}

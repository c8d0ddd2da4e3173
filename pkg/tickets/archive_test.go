package tickets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) (*Sink, *fakeTicketStore, *fakePlatform) {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	ticketStore := newFakeTicketStore()
	platform := newFakePlatform()
	platform.addChannel("log-1", "ticket-logs")
	platform.addChannel("chan-t", "help-gopher")

	return NewSink(l, ticketStore, platform), ticketStore, platform
}

func archivedTicket() *entities.Ticket {
	return &entities.Ticket{
		ChannelID: "chan-t",
		GuildID:   "g1",
		Panel:     "support",
		UserID:    "user-1",
		Status:    entities.TicketStatusClosing,
		ClosedBy:  "user-1",
	}
}

func transcriptMessage(id int, author, content string, at time.Time) *discordgo.Message {
	return &discordgo.Message{
		ID:        strconv.Itoa(id),
		Content:   content,
		Timestamp: at,
		Author:    &discordgo.User{Username: author},
	}
}

func TestSinkArchive(t *testing.T) {
	sink, ticketStore, platform := newTestSink(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	// Newest first, as the history endpoint returns pages.
	platform.history["chan-t"] = []*discordgo.Message{
		transcriptMessage(3, "gopher", "thanks", base.Add(2*time.Minute)),
		transcriptMessage(2, "staff", "looking into it", base.Add(time.Minute)),
		transcriptMessage(1, "gopher", "my order is stuck", base),
	}

	ticket := archivedTicket()
	record, err := sink.Archive(context.Background(), ticket, "log-1")
	require.NoError(t, err)
	require.NotEmpty(t, record.MessageID)
	require.Equal(t, "log-1", record.LogChannelID)
	require.Contains(t, record.FileName, "help-gopher")

	// The transcript is rendered oldest first.
	sent := platform.sent["log-1"][0]
	require.Len(t, sent.Files, 1)
	body, err := io.ReadAll(sent.Files[0].Reader)
	require.NoError(t, err)
	require.Equal(t,
		"[2024-03-01T12:00:00Z] gopher: my order is stuck\n"+
			"[2024-03-01T12:01:00Z] staff: looking into it\n"+
			"[2024-03-01T12:02:00Z] gopher: thanks\n",
		string(body))

	// The dedupe marker is persisted before returning.
	require.Equal(t, record.MessageID, ticket.ArchiveMessageID)
	saved, err := ticketStore.GetTicket(context.Background(), "g1", "chan-t")
	require.NoError(t, err)
	require.Equal(t, record.MessageID, saved.ArchiveMessageID)
}

func TestSinkArchivePaginates(t *testing.T) {
	sink, _, platform := newTestSink(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	total := transcriptPageSize*2 + 5
	history := make([]*discordgo.Message, 0, total)
	for i := total; i >= 1; i-- {
		history = append(history, transcriptMessage(i, "gopher", fmt.Sprintf("line %d", i), base.Add(time.Duration(i)*time.Second)))
	}
	platform.history["chan-t"] = history

	_, err := sink.Archive(context.Background(), archivedTicket(), "log-1")
	require.NoError(t, err)

	body, err := io.ReadAll(platform.sent["log-1"][0].Files[0].Reader)
	require.NoError(t, err)

	lines := string(body)
	require.Contains(t, lines, "line 1\n")
	require.Contains(t, lines, fmt.Sprintf("line %d\n", total))
	// Oldest first across page boundaries.
	require.Less(t,
		strings.Index(lines, "line 1\n"),
		strings.Index(lines, fmt.Sprintf("line %d\n", total)))
}

func TestSinkArchiveRetryAfterMarkerSaveFailure(t *testing.T) {
	sink, ticketStore, platform := newTestSink(t)

	// The marker save fails, so the store never learns about the post.
	ticketStore.saveErr = errors.New("write concern timeout")

	first, err := sink.Archive(context.Background(), archivedTicket(), "log-1")
	require.NoError(t, err)
	require.Equal(t, 1, platform.sentCount("log-1"))

	// A retried close re-reads the ticket without the marker; the post in
	// the log channel is found by ticket identity instead of posted again.
	retry, err := sink.Archive(context.Background(), archivedTicket(), "log-1")
	require.NoError(t, err)
	require.Equal(t, first.MessageID, retry.MessageID)
	require.Equal(t, 1, platform.sentCount("log-1"))
}

func TestSinkArchiveDedupe(t *testing.T) {
	sink, _, platform := newTestSink(t)

	ticket := archivedTicket()
	ticket.ArchiveMessageID = "msg-prior"

	record, err := sink.Archive(context.Background(), ticket, "log-1")
	require.NoError(t, err)
	require.Equal(t, "msg-prior", record.MessageID)

	// Nothing is posted again.
	require.Equal(t, 0, platform.sentCount("log-1"))
}

func TestSinkArchiveNoLogChannel(t *testing.T) {
	sink, _, _ := newTestSink(t)

	_, err := sink.Archive(context.Background(), archivedTicket(), "")
	require.ErrorIs(t, err, ErrLogChannelUnavailable)
}

func TestSinkArchiveLogChannelGone(t *testing.T) {
	sink, _, platform := newTestSink(t)

	_, err := sink.Archive(context.Background(), archivedTicket(), "log-deleted")
	require.ErrorIs(t, err, ErrLogChannelUnavailable)
	require.Equal(t, 0, platform.sentCount("log-deleted"))
}

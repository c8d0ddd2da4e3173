package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/google/uuid"
	"github.com/lupine-bot/lupine/pkg/custom"
	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/lupine-bot/lupine/pkg/logging"
	"golang.org/x/time/rate"
)

// transcriptPageSize is the number of messages fetched per history page.
const transcriptPageSize = 100

// archiveScanPages bounds the log-channel scan for a prior archive post.
const archiveScanPages = 3

// archiveFooter is the embed footer of an archive post. It carries the
// archived ticket's identity so retries can find the post in the log channel
// even when the marker never reached the store.
func archiveFooter(ticketChannelID string) string {
	return "Ticket " + ticketChannelID
}

// Sink archives closing tickets: it renders the channel history into a
// transcript file and posts it to the panel's log channel. Archiving is safe
// to retry; a transcript already posted by a prior partial attempt is not
// posted again.
type Sink struct {
	l        *slog.Logger
	tickets  TicketStore
	platform Platform

	// limiter paces history page fetches so large tickets do not hammer
	// the platform API.
	limiter *rate.Limiter
}

// NewSink creates a new archive sink.
func NewSink(l *slog.Logger, tickets TicketStore, platform Platform) *Sink {
	return &Sink{
		l:        l,
		tickets:  tickets,
		platform: platform,
		limiter:  rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
	}
}

// Archive posts the ticket's transcript to logChannelID. Retries after a
// partial attempt never post twice: dedupe runs on the ticket's identity,
// first through the archive message ID recorded on the ticket and, when that
// marker never reached the store, through the ticket identity stamped on the
// post itself in the log channel. Returns ErrLogChannelUnavailable when the
// log channel is unset, gone or inaccessible; the caller keeps the ticket in
// closing.
func (s *Sink) Archive(ctx context.Context, ticket *entities.Ticket, logChannelID string) (*entities.ArchiveRecord, error) {
	if logChannelID == "" {
		return nil, ErrLogChannelUnavailable
	}

	record := &entities.ArchiveRecord{
		ID:              uuid.NewString(),
		GuildID:         ticket.GuildID,
		TicketChannelID: ticket.ChannelID,
		LogChannelID:    logChannelID,
		ClosedBy:        ticket.ClosedBy,
		ArchivedAt:      custom.Datetime(time.Now().UTC()),
	}

	// A prior attempt already posted the transcript. Dedupe by ticket
	// identity rather than posting again.
	if ticket.ArchiveMessageID != "" {
		record.MessageID = ticket.ArchiveMessageID
		return record, nil
	}

	if _, err := s.platform.Channel(logChannelID); err != nil {
		return nil, fmt.Errorf("log channel %s inaccessible: %w", logChannelID, ErrLogChannelUnavailable)
	}

	// A prior attempt may have posted the transcript without the marker
	// reaching the store. The post carries the ticket identity in its
	// footer, so the log channel itself is checked before posting again.
	msgID, err := s.findArchiveMessage(ctx, logChannelID, ticket.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("error scanning log channel: %w", err)
	}
	if msgID != "" {
		record.MessageID = msgID
		s.rememberArchive(ctx, ticket, msgID)
		return record, nil
	}

	transcript, channelName, err := s.collectTranscript(ctx, ticket.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("error collecting transcript: %w", err)
	}

	record.FileName = fmt.Sprintf("%s-%s.txt",
		time.Now().UTC().Format("20060102-150405"), channelName)

	msg, err := s.platform.ChannelMessageSendComplex(logChannelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Ticket Closed - #%s", channelName),
			Description: fmt.Sprintf("Closed by: <@%s>", ticket.ClosedBy),
			Color:       ClosedColor,
			Footer: &discordgo.MessageEmbedFooter{
				Text: archiveFooter(ticket.ChannelID),
			},
		},
		Files: []*discordgo.File{
			{
				Name:        record.FileName,
				ContentType: "text/plain",
				Reader:      strings.NewReader(transcript),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error posting archive message: %w", err)
	}

	record.MessageID = msg.ID
	s.rememberArchive(ctx, ticket, msg.ID)

	s.l.Info("Ticket archived",
		slog.String(logging.KeyTicket, ticket.ChannelID),
		slog.String("archive_message", msg.ID),
	)
	return record, nil
}

// rememberArchive records the archive message on the ticket as a dedupe fast
// path. A failed save is not fatal: the footer scan still finds the post on
// the next attempt.
func (s *Sink) rememberArchive(ctx context.Context, ticket *entities.Ticket, messageID string) {
	ticket.ArchiveMessageID = messageID
	if err := s.tickets.SaveTicket(ctx, ticket); err != nil {
		s.l.Warn("Error recording archive message on ticket",
			slog.String(logging.KeyTicket, ticket.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// findArchiveMessage looks through the most recent pages of the log channel
// for a post stamped with the ticket's identity. The scan is bounded; a post
// buried deeper than archiveScanPages pages is treated as absent.
func (s *Sink) findArchiveMessage(ctx context.Context, logChannelID, ticketChannelID string) (string, error) {
	want := archiveFooter(ticketChannelID)

	beforeID := ""
	for page := 0; page < archiveScanPages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		msgs, err := s.platform.ChannelMessages(logChannelID, transcriptPageSize, beforeID, "", "")
		if err != nil {
			return "", fmt.Errorf("error fetching log channel history: %w", err)
		}
		if len(msgs) == 0 {
			return "", nil
		}

		for _, m := range msgs {
			for _, e := range m.Embeds {
				if e.Footer != nil && e.Footer.Text == want {
					return m.ID, nil
				}
			}
		}

		beforeID = msgs[len(msgs)-1].ID
		if len(msgs) < transcriptPageSize {
			return "", nil
		}
	}
	return "", nil
}

// collectTranscript pages through the channel history and renders it
// oldest-first as "[timestamp] author: content" lines.
func (s *Sink) collectTranscript(ctx context.Context, channelID string) (string, string, error) {
	channelName := channelID
	if ch, err := s.platform.Channel(channelID); err == nil {
		channelName = ch.Name
	}

	var all []*discordgo.Message
	beforeID := ""
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", "", err
		}

		page, err := s.platform.ChannelMessages(channelID, transcriptPageSize, beforeID, "", "")
		if err != nil {
			return "", "", fmt.Errorf("error fetching channel history: %w", err)
		}
		if len(page) == 0 {
			break
		}

		// Pages are newest-first; the oldest message of the page cursors
		// the next fetch.
		all = append(all, page...)
		beforeID = page[len(page)-1].ID

		if len(page) < transcriptPageSize {
			break
		}
	}

	var b strings.Builder
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		author := "unknown"
		if m.Author != nil {
			author = m.Author.Username
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp.UTC().Format(time.RFC3339), author, m.Content)
	}
	return b.String(), channelName, nil
}

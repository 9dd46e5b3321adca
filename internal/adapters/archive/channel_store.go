// Package archive stores exported transcripts as attachments in the
// archive log channel.
package archive

import (
	"context"
	"strings"
	"sync"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// DefaultLogChannel is the name looked up when no channel id is configured.
const DefaultLogChannel = "arkiv-logg"

// ChannelStore implements secondary.DocumentStore by uploading documents to
// a log channel. The reference is the attachment URL.
type ChannelStore struct {
	platform    secondary.ChatPlatform
	channelID   int64
	channelName string

	mu       sync.Mutex
	resolved int64
}

// NewChannelStore creates a store posting to channelID, or to the first text
// channel called channelName when channelID is 0.
func NewChannelStore(platform secondary.ChatPlatform, channelID int64, channelName string) *ChannelStore {
	if channelName == "" {
		channelName = DefaultLogChannel
	}
	return &ChannelStore{platform: platform, channelID: channelID, channelName: channelName}
}

// Store uploads the document with its caption.
func (s *ChannelStore) Store(ctx context.Context, doc secondary.Document) (string, error) {
	channelID, err := s.channel(ctx)
	if err != nil {
		return "", err
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	sent, err := s.platform.SendMessage(ctx, channelID, secondary.OutgoingMessage{
		Content: doc.Caption,
		Files:   []secondary.File{{Name: doc.Name, ContentType: contentType, Data: doc.Data}},
	})
	if err != nil {
		return "", err
	}
	if len(sent.AttachmentURLs) == 0 {
		return "", courterr.External("document.store", nil, "archive upload returned no attachment")
	}
	return sent.AttachmentURLs[0], nil
}

func (s *ChannelStore) channel(ctx context.Context) (int64, error) {
	if s.channelID != 0 {
		return s.channelID, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved != 0 {
		return s.resolved, nil
	}

	channels, err := s.platform.ListChannels(ctx)
	if err != nil {
		return 0, err
	}
	for _, ch := range channels {
		if !ch.Category && strings.EqualFold(ch.Name, s.channelName) {
			s.resolved = ch.ID
			return ch.ID, nil
		}
	}
	return 0, courterr.NotFound("document.store", "archive log channel %q not found; run court setup", s.channelName)
}

// Ensure ChannelStore implements the interface
var _ secondary.DocumentStore = (*ChannelStore)(nil)

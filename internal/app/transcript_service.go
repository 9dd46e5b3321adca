package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/transcript"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// TranscriptOptions configures document rendering.
type TranscriptOptions struct {
	Keywords []string
	Footer   string
	Location *time.Location
}

// TranscriptServiceImpl implements the TranscriptService interface.
type TranscriptServiceImpl struct {
	caseRepo     secondary.CaseRepository
	evidenceRepo secondary.EvidenceRepository
	platform     secondary.ChatPlatform
	renderer     *transcript.Renderer
	filter       transcript.Filter
	footer       string
	loc          *time.Location
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// NewTranscriptService creates a new TranscriptService with injected dependencies.
func NewTranscriptService(
	caseRepo secondary.CaseRepository,
	evidenceRepo secondary.EvidenceRepository,
	platform secondary.ChatPlatform,
	opts TranscriptOptions,
	logger *zap.SugaredLogger,
) (*TranscriptServiceImpl, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	renderer, err := transcript.NewRenderer(loc)
	if err != nil {
		return nil, err
	}
	return &TranscriptServiceImpl{
		caseRepo:     caseRepo,
		evidenceRepo: evidenceRepo,
		platform:     platform,
		renderer:     renderer,
		filter:       transcript.NewFilter(opts.Keywords),
		footer:       opts.Footer,
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// ExportCase renders the transcript of a registered case. History, evidence
// and the judge's name are loaded concurrently; the first failure cancels
// the others and no document is produced.
func (s *TranscriptServiceImpl) ExportCase(ctx context.Context, req primary.ExportCaseRequest) (*primary.ExportedDocument, error) {
	c, err := s.caseRepo.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	window := req.Window
	if window <= 0 {
		window = primary.RoutineWindow
	}

	var (
		history []*secondary.MessageRecord
		items   []*secondary.EvidenceRecord
		judge   string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.platform.FetchHistory(gctx, c.ChannelID, window)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.evidenceRepo.List(gctx, c.ID)
		if err != nil {
			return fmt.Errorf("failed to load evidence: %w", err)
		}
		return nil
	})
	if c.AssignedJudgeID != 0 {
		g.Go(func() error {
			m, err := s.platform.GetMember(gctx, c.AssignedJudgeID)
			if errors.Is(err, secondary.ErrUnknownMember) {
				s.logger.Debugw("assigned judge left the guild", "case_id", c.ID, "judge_id", c.AssignedJudgeID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to resolve judge: %w", err)
			}
			judge = m.DisplayName
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warnw("case export failed", "case_id", c.ID, "error", err)
		return nil, err
	}

	in := transcript.CaseInput{
		Case: transcript.CaseInfo{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Status:      caselife.Status(c.Status).Label(),
			Archived:    c.Archived,
			CreatedAt:   c.CreatedAt,
		},
		Messages:  toTranscriptMessages(history),
		JudgeName: judge,
		Footer:    s.footer,
	}
	for _, item := range items {
		in.Evidence = append(in.Evidence, transcript.EvidenceItem{
			Position:    item.Position,
			Description: item.Description,
			Link:        item.Link,
			SubmittedAt: item.SubmittedAt,
		})
	}

	data, err := s.renderer.RenderBytes(transcript.BuildCase(in, s.filter))
	if err != nil {
		return nil, err
	}
	s.logger.Infow("case exported", "case_id", c.ID, "messages", len(history), "evidence", len(items))

	return &primary.ExportedDocument{
		Name:         caselife.ArchiveFileName(c.ID, s.stamp()),
		Data:         data,
		MessageCount: len(history),
	}, nil
}

// ExportChannel renders the transcript of a channel that is not a case.
func (s *TranscriptServiceImpl) ExportChannel(ctx context.Context, req primary.ExportChannelRequest) (*primary.ExportedDocument, error) {
	window := req.Window
	if window <= 0 {
		window = primary.LegacyWindow
	}
	actor := ctxutil.ActorFromContext(ctx)

	var (
		channel  *secondary.ChannelRecord
		history  []*secondary.MessageRecord
		archiver = "court"
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		channel, err = s.platform.GetChannel(gctx, req.ChannelID)
		if err != nil {
			return fmt.Errorf("failed to resolve channel: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.platform.FetchHistory(gctx, req.ChannelID, window)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}
		return nil
	})
	if actor != 0 {
		g.Go(func() error {
			m, err := s.platform.GetMember(gctx, actor)
			if errors.Is(err, secondary.ErrUnknownMember) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to resolve archiver: %w", err)
			}
			archiver = m.DisplayName
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warnw("channel export failed", "channel_id", req.ChannelID, "error", err)
		return nil, err
	}

	now := s.now()
	doc := transcript.BuildLegacy(transcript.LegacyInput{
		Title:       req.Title,
		Description: req.Description,
		ChannelName: channel.Name,
		ArchivedBy:  archiver,
		ArchivedAt:  now,
		Messages:    toTranscriptMessages(history),
		Footer:      s.footer,
	}, s.filter)
	data, err := s.renderer.RenderBytes(doc)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("channel exported", "channel_id", req.ChannelID, "messages", len(history))

	return &primary.ExportedDocument{
		Name:         caselife.LegacyFileName(now.In(s.loc).Format(caselife.ArchiveStampLayout)),
		Data:         data,
		MessageCount: len(history),
	}, nil
}

func (s *TranscriptServiceImpl) stamp() string {
	return s.now().In(s.loc).Format(caselife.ArchiveStampLayout)
}

func toTranscriptMessages(records []*secondary.MessageRecord) []transcript.Message {
	msgs := make([]transcript.Message, 0, len(records))
	for _, r := range records {
		m := transcript.Message{
			ID:          r.ID,
			AuthorID:    r.AuthorID,
			AuthorName:  r.AuthorName,
			AvatarURL:   r.AvatarURL,
			AuthorBot:   r.AuthorBot,
			AuthorColor: r.AuthorColor,
			Content:     r.Content,
			CreatedAt:   r.CreatedAt,
			Attachments: r.Attachments,
		}
		for _, e := range r.Embeds {
			embed := transcript.Embed{Title: e.Title, Description: e.Description}
			for _, f := range e.Fields {
				embed.Fields = append(embed.Fields, transcript.EmbedField{Name: f.Name, Value: f.Value})
			}
			m.Embeds = append(m.Embeds, embed)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// Ensure TranscriptServiceImpl implements the interface
var _ primary.TranscriptService = (*TranscriptServiceImpl)(nil)

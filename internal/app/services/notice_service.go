package services

import (
	"context"
	"strings"
	"time"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/campusly/campusly/internal/pkg/websocket"
	"github.com/rs/zerolog"
)

// NoticeService publishes campus and global announcements
type NoticeService interface {
	CreateNotice(ctx context.Context, actor authz.Actor, req *dto.NoticeRequest) (*models.Notice, error)
	GetNotice(ctx context.Context, id int64) (*models.Notice, error)
	ListNotices(ctx context.Context, actor authz.Actor, filter dto.NoticeFilter, page, size int) ([]*models.Notice, int64, error)
	ListActiveNotices(ctx context.Context, filter dto.NoticeFilter, page, size int) ([]*models.Notice, int64, error)
	UpdateNotice(ctx context.Context, actor authz.Actor, id int64, req *dto.NoticeRequest) (*models.Notice, error)
	DeleteNotice(ctx context.Context, actor authz.Actor, id int64) error
}

// NoticeStore persists notices
type NoticeStore interface {
	Create(ctx context.Context, n *models.Notice) error
	GetByID(ctx context.Context, id int64) (*models.Notice, error)
	List(ctx context.Context, filter dto.NoticeFilter, offset, limit uint64) ([]*models.Notice, int64, error)
	ListActive(ctx context.Context, filter dto.NoticeFilter, now time.Time, offset, limit uint64) ([]*models.Notice, int64, error)
	Update(ctx context.Context, n *models.Notice) error
	Delete(ctx context.Context, id int64) error
}

// NoticePublisher pushes notices to live subscribers
type NoticePublisher interface {
	Publish(n *websocket.Notification)
}

type noticeService struct {
	noticeRepo NoticeStore
	publisher  NoticePublisher
	logger     zerolog.Logger
	now        Clock
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(noticeRepo NoticeStore, publisher NoticePublisher, logger zerolog.Logger) NoticeService {
	return &noticeService{
		noticeRepo: noticeRepo,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// noticeFromRequest validates a request. publishAt applies when the request has none.
// Campus-bound actors default to their own campus; only a super admin may address every campus.
func (s *noticeService) noticeFromRequest(actor authz.Actor, req *dto.NoticeRequest, publishAt time.Time) (*models.Notice, error) {
	title, body := strings.TrimSpace(req.Title), strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return nil, invalidf("title and body are required")
	}

	audience := req.Audience
	if audience == "" {
		audience = models.AudienceAll
	}
	if !audience.IsValid() {
		return nil, invalidf("unknown audience %q", audience)
	}

	campusID := req.CampusID
	if campusID == nil && !actor.IsSuperAdmin() {
		campusID = actor.CampusID
	}
	if campusID == nil {
		if !actor.IsSuperAdmin() {
			return nil, authz.ErrNoCampus
		}
	} else if err := actor.AuthorizeCampus(*campusID); err != nil {
		return nil, err
	}

	if req.PublishAt != nil {
		publishAt = req.PublishAt.UTC()
	}
	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		exp := req.ExpiresAt.UTC()
		if !exp.After(publishAt) {
			return nil, invalidf("expiresAt must be after publishAt")
		}
		expiresAt = &exp
	}

	return &models.Notice{
		CampusID:  campusID,
		Title:     title,
		Body:      body,
		Audience:  audience,
		PublishAt: publishAt,
		ExpiresAt: expiresAt,
	}, nil
}

// authorizeNotice checks the actor may manage an existing notice
func authorizeNotice(actor authz.Actor, n *models.Notice) error {
	if n.CampusID == nil {
		if actor.IsSuperAdmin() {
			return nil
		}
		return authz.ErrOtherCampus
	}
	return actor.AuthorizeCampus(*n.CampusID)
}

// broadcast pushes a notice to subscribers when it is already live
func (s *noticeService) broadcast(n *models.Notice, kind string) {
	if s.publisher == nil || !n.IsActiveAt(s.now()) {
		return
	}
	var campusID int64
	if n.CampusID != nil {
		campusID = *n.CampusID
	}
	s.publisher.Publish(&websocket.Notification{
		Type:      kind,
		NoticeID:  n.ID,
		CampusID:  campusID,
		Title:     n.Title,
		Body:      n.Body,
		Audience:  string(n.Audience),
		PublishAt: n.PublishAt,
		ExpiresAt: n.ExpiresAt,
	})
}

// CreateNotice stores a notice and broadcasts it if its publish time has passed
func (s *noticeService) CreateNotice(ctx context.Context, actor authz.Actor, req *dto.NoticeRequest) (*models.Notice, error) {
	notice, err := s.noticeFromRequest(actor, req, s.now().UTC())
	if err != nil {
		return nil, err
	}
	createdBy := actor.UserID
	notice.CreatedBy = &createdBy

	if err := s.noticeRepo.Create(ctx, notice); err != nil {
		return nil, err
	}
	s.broadcast(notice, "notice.published")
	return notice, nil
}

// GetNotice returns one notice
func (s *noticeService) GetNotice(ctx context.Context, id int64) (*models.Notice, error) {
	return s.noticeRepo.GetByID(ctx, id)
}

// ListNotices returns every notice in scope, including scheduled and expired ones
func (s *noticeService) ListNotices(ctx context.Context, actor authz.Actor, filter dto.NoticeFilter, page, size int) ([]*models.Notice, int64, error) {
	campusID, err := actor.ScopeCampus(filter.CampusID)
	if err != nil {
		return nil, 0, err
	}
	if campusID != nil && !actor.IsSuperAdmin() {
		filter.IncludeGlobal = true
	}
	filter.CampusID = campusID
	if filter.Audience != nil && !filter.Audience.IsValid() {
		return nil, 0, invalidf("unknown audience %q", *filter.Audience)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.noticeRepo.List(ctx, filter, offset, limit)
}

// ListActiveNotices returns live notices for a campus board, global notices included
func (s *noticeService) ListActiveNotices(ctx context.Context, filter dto.NoticeFilter, page, size int) ([]*models.Notice, int64, error) {
	if filter.Audience != nil && !filter.Audience.IsValid() {
		return nil, 0, invalidf("unknown audience %q", *filter.Audience)
	}
	filter.IncludeGlobal = true

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return s.noticeRepo.ListActive(ctx, filter, s.now().UTC(), offset, limit)
}

// UpdateNotice replaces a notice and rebroadcasts it if live
func (s *noticeService) UpdateNotice(ctx context.Context, actor authz.Actor, id int64, req *dto.NoticeRequest) (*models.Notice, error) {
	existing, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeNotice(actor, existing); err != nil {
		return nil, err
	}

	notice, err := s.noticeFromRequest(actor, req, existing.PublishAt)
	if err != nil {
		return nil, err
	}
	notice.ID = id
	notice.CreatedBy = existing.CreatedBy
	notice.CreatedAt = existing.CreatedAt

	if err := s.noticeRepo.Update(ctx, notice); err != nil {
		return nil, err
	}
	s.broadcast(notice, "notice.updated")
	return notice, nil
}

// DeleteNotice removes a notice
func (s *noticeService) DeleteNotice(ctx context.Context, actor authz.Actor, id int64) error {
	existing, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeNotice(actor, existing); err != nil {
		return err
	}
	if err := s.noticeRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("noticeID", id).Int64("by", actor.UserID).Msg("Notice deleted")
	return nil
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookshelf-labs/lending-service/internal/model"
	"github.com/bookshelf-labs/lending-service/internal/repository"
	"github.com/bookshelf-labs/lending-service/pkg/kafka"
)

type Service struct {
	log  *zap.Logger
	repo repository.Repository
	enq  Enqueuer
}

func NewService(repo repository.Repository, enq Enqueuer, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
		enq:  enq,
	}
}

func (s *Service) CreateBook(ctx context.Context, req model.NewBook) (model.Book, error) {
	return s.repo.CreateBook(ctx, req)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int, req model.UpdateBook) error {
	return s.repo.UpdateBook(ctx, id, req)
}

func (s *Service) DeleteBook(ctx context.Context, id int) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, params model.BookSearchParams) ([]model.Book, error) {
	return s.repo.ListBooks(ctx, params)
}

func (s *Service) CreateMember(ctx context.Context, req model.NewMember) (model.Member, error) {
	return s.repo.CreateMember(ctx, req)
}

func (s *Service) GetMember(ctx context.Context, id int) (model.Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) UpdateMember(ctx context.Context, id int, req model.UpdateMember) error {
	return s.repo.UpdateMember(ctx, id, req)
}

func (s *Service) DeleteMember(ctx context.Context, id int) error {
	return s.repo.DeleteMember(ctx, id)
}

func (s *Service) ListMembers(ctx context.Context, params model.MemberSearchParams) ([]model.Member, error) {
	return s.repo.ListMembers(ctx, params)
}

func (s *Service) Borrow(ctx context.Context, bookID, memberID int) (model.Borrowing, error) {
	bw, err := s.repo.Borrow(ctx, bookID, memberID)
	if err != nil {
		return model.Borrowing{}, err
	}
	s.emit(model.LendingActionBorrow, bw)
	return bw, nil
}

func (s *Service) Return(ctx context.Context, bookID int) (model.Borrowing, error) {
	bw, err := s.repo.Return(ctx, bookID)
	if err != nil {
		return model.Borrowing{}, err
	}
	s.emit(model.LendingActionReturn, bw)
	return bw, nil
}

func (s *Service) DeleteBorrowing(ctx context.Context, id int) error {
	return s.repo.DeleteBorrowing(ctx, id)
}

func (s *Service) ListBorrowed(ctx context.Context, params model.BorrowSearchParams) ([]model.BorrowedBook, error) {
	return s.repo.ListBorrowed(ctx, params)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// emit publishes a lending event best-effort: a broker fault is logged and
// never fails the committed transition.
func (s *Service) emit(action model.LendingAction, bw model.Borrowing) {
	event := model.LendingEvent{
		EventUid:    uuid.NewString(),
		Action:      action,
		BorrowingID: bw.ID,
		BookID:      bw.BookID,
		MemberID:    bw.MemberID,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.enq.Enqueue(kafka.LendingTopic, event); err != nil {
		s.log.Warn("enqueue lending event",
			zap.String("action", string(action)),
			zap.Int("borrowingID", bw.ID),
			zap.Error(err))
	}
}

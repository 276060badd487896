package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
)

var ErrNoteNotFound = errors.New("note not found")

// NoteService manages a user's private notes.
type NoteService interface {
	Create(ctx context.Context, authorID primitive.ObjectID, title, content string) (*domain.Note, error)
	List(ctx context.Context, authorID primitive.ObjectID) ([]domain.Note, error)
	Delete(ctx context.Context, authorID, noteID primitive.ObjectID) error
}

type noteService struct {
	noteRepo repository.NoteRepository
}

// NewNoteService creates a new instance of noteService.
func NewNoteService(noteRepo repository.NoteRepository) NoteService {
	return &noteService{noteRepo: noteRepo}
}

func (s *noteService) Create(ctx context.Context, authorID primitive.ObjectID, title, content string) (*domain.Note, error) {
	if title == "" && content == "" {
		return nil, errors.New("note cannot be empty")
	}
	note := &domain.Note{
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
	id, err := s.noteRepo.Create(ctx, note)
	if err != nil {
		return nil, err
	}
	note.ID = id
	return note, nil
}

func (s *noteService) List(ctx context.Context, authorID primitive.ObjectID) ([]domain.Note, error) {
	return s.noteRepo.ListByAuthor(ctx, authorID)
}

func (s *noteService) Delete(ctx context.Context, authorID, noteID primitive.ObjectID) error {
	err := s.noteRepo.Delete(ctx, noteID, authorID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoteNotFound
	}
	return err
}

package service

import (
	"errors"
	"log"

	"dinnerboard/internal/models"
	"dinnerboard/internal/realtime"
	"dinnerboard/internal/repository"
	"dinnerboard/internal/validation"
)

var ErrNoteNotFound = errors.New("note not found")

// NoteService handles free-text annotations on (member, date) pairs
type NoteService struct {
	noteRepo *repository.NoteRepository
	broker   *realtime.Broker
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo *repository.NoteRepository, broker *realtime.Broker) *NoteService {
	return &NoteService{noteRepo: noteRepo, broker: broker}
}

// AddNote creates a note with its own generated identity; several notes can
// exist for the same member and day
func (s *NoteService) AddNote(familyID, memberID, date, text string) (*models.Note, error) {
	if memberID == "" {
		return nil, ErrMemberNotFound
	}
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}
	if err := validation.ValidateText(text); err != nil {
		return nil, err
	}

	note, err := s.noteRepo.CreateNote(familyID, memberID, date, text)
	if err != nil {
		return nil, err
	}

	s.broker.Publish(familyID, realtime.TopicNotes)
	return note, nil
}

// UpdateNote patches a note's text
func (s *NoteService) UpdateNote(familyID, noteID, text string) error {
	if err := validation.ValidateText(text); err != nil {
		return err
	}

	existing, err := s.noteRepo.GetNote(familyID, noteID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNoteNotFound
	}

	if err := s.noteRepo.UpdateNoteText(familyID, noteID, text); err != nil {
		return err
	}

	s.broker.Publish(familyID, realtime.TopicNotes)
	return nil
}

// DeleteNote removes a note by ID
func (s *NoteService) DeleteNote(familyID, noteID string) error {
	existing, err := s.noteRepo.GetNote(familyID, noteID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNoteNotFound
	}

	if err := s.noteRepo.DeleteNote(familyID, noteID); err != nil {
		return err
	}

	s.broker.Publish(familyID, realtime.TopicNotes)
	return nil
}

// ListNotes retrieves every note of the family
func (s *NoteService) ListNotes(familyID string) ([]models.Note, error) {
	return s.noteRepo.ListNotes(familyID)
}

// NotesForDate filters the live collection down to one day
func (s *NoteService) NotesForDate(familyID, date string) ([]models.Note, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}
	return s.noteRepo.ListNotesByDate(familyID, date)
}

// SubscribeNotes delivers the full note list to cb immediately and after
// every note change, always as a total replacement.
func (s *NoteService) SubscribeNotes(familyID string, cb func([]models.Note)) func() {
	return s.broker.Subscribe(familyID, realtime.TopicNotes, func() {
		notes, err := s.noteRepo.ListNotes(familyID)
		if err != nil {
			log.Printf("note subscription refresh failed: %v", err)
			return
		}
		cb(notes)
	})
}

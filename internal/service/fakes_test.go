package service

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
)

// In-memory repository fakes backing the service tests. They honor the same
// sentinel errors and uniqueness rules as the mongo implementations.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	cp := *user
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	cp.UpdatedAt = time.Now()
	r.users[user.ID] = &cp
	return nil
}

type fakeSweatSheetRepo struct {
	sheets map[primitive.ObjectID]*domain.SweatSheet
}

func newFakeSweatSheetRepo() *fakeSweatSheetRepo {
	return &fakeSweatSheetRepo{sheets: make(map[primitive.ObjectID]*domain.SweatSheet)}
}

func cloneSheet(s *domain.SweatSheet) *domain.SweatSheet {
	cp := *s
	cp.Phases = make([]domain.Phase, len(s.Phases))
	for i, phase := range s.Phases {
		p := phase
		p.Sections = make([]domain.Section, len(phase.Sections))
		for j, section := range phase.Sections {
			sec := section
			sec.Exercises = append([]domain.SheetExercise(nil), section.Exercises...)
			p.Sections[j] = sec
		}
		cp.Phases[i] = p
	}
	return &cp
}

func (r *fakeSweatSheetRepo) Create(_ context.Context, sheet *domain.SweatSheet) (primitive.ObjectID, error) {
	// Mirrors the partial unique index on (creatorId, idempotencyKey):
	// sheets created without a key are never in conflict.
	if sheet.IdempotencyKey != "" {
		for _, s := range r.sheets {
			if s.CreatorID == sheet.CreatorID && s.IdempotencyKey == sheet.IdempotencyKey {
				return primitive.NilObjectID, repository.ErrConflict
			}
		}
	}
	cp := cloneSheet(sheet)
	cp.ID = primitive.NewObjectID()
	r.sheets[cp.ID] = cp
	return cp.ID, nil
}

func (r *fakeSweatSheetRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SweatSheet, error) {
	s, ok := r.sheets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSheet(s), nil
}

func (r *fakeSweatSheetRepo) GetByIdempotencyKey(_ context.Context, creatorID primitive.ObjectID, key string) (*domain.SweatSheet, error) {
	for _, s := range r.sheets {
		if s.CreatorID == creatorID && s.IdempotencyKey == key {
			return cloneSheet(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSweatSheetRepo) GetActiveForAthlete(_ context.Context, athleteID primitive.ObjectID) (*domain.SweatSheet, error) {
	for _, s := range r.sheets {
		if s.IsActive && s.AssignedTo != nil && *s.AssignedTo == athleteID {
			return cloneSheet(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSweatSheetRepo) ListByCreator(_ context.Context, creatorID primitive.ObjectID) ([]domain.SweatSheet, error) {
	var out []domain.SweatSheet
	for _, s := range r.sheets {
		if s.CreatorID == creatorID {
			out = append(out, *cloneSheet(s))
		}
	}
	return out, nil
}

func (r *fakeSweatSheetRepo) ListAssigned(_ context.Context, athleteID primitive.ObjectID) ([]domain.SweatSheet, error) {
	var out []domain.SweatSheet
	for _, s := range r.sheets {
		if s.AssignedTo != nil && *s.AssignedTo == athleteID {
			out = append(out, *cloneSheet(s))
		}
	}
	return out, nil
}

func (r *fakeSweatSheetRepo) ListTemplates(_ context.Context) ([]domain.SweatSheet, error) {
	var out []domain.SweatSheet
	for _, s := range r.sheets {
		if s.IsTemplate {
			out = append(out, *cloneSheet(s))
		}
	}
	return out, nil
}

func (r *fakeSweatSheetRepo) Update(_ context.Context, sheet *domain.SweatSheet) error {
	if _, ok := r.sheets[sheet.ID]; !ok {
		return repository.ErrNotFound
	}
	r.sheets[sheet.ID] = cloneSheet(sheet)
	return nil
}

func (r *fakeSweatSheetRepo) Delete(_ context.Context, id, creatorID primitive.ObjectID) error {
	s, ok := r.sheets[id]
	if !ok || s.CreatorID != creatorID {
		return repository.ErrNotFound
	}
	delete(r.sheets, id)
	return nil
}

type fakeWorkoutRepo struct {
	categories map[primitive.ObjectID]*domain.WorkoutCategory
	exercises  map[primitive.ObjectID]*domain.WorkoutExercise
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{
		categories: make(map[primitive.ObjectID]*domain.WorkoutCategory),
		exercises:  make(map[primitive.ObjectID]*domain.WorkoutExercise),
	}
}

func (r *fakeWorkoutRepo) CreateCategory(_ context.Context, category *domain.WorkoutCategory) (primitive.ObjectID, error) {
	for _, c := range r.categories {
		if c.Name == category.Name {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	cp := *category
	cp.ID = primitive.NewObjectID()
	r.categories[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeWorkoutRepo) ListCategories(_ context.Context) ([]domain.WorkoutCategory, error) {
	var out []domain.WorkoutCategory
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeWorkoutRepo) GetCategoryByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeWorkoutRepo) CreateExercise(_ context.Context, exercise *domain.WorkoutExercise) (primitive.ObjectID, error) {
	cp := *exercise
	cp.ID = primitive.NewObjectID()
	r.exercises[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeWorkoutRepo) ListExercises(_ context.Context) ([]domain.WorkoutExercise, error) {
	var out []domain.WorkoutExercise
	for _, e := range r.exercises {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeWorkoutRepo) ListExercisesByCategory(_ context.Context, categoryID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	var out []domain.WorkoutExercise
	for _, e := range r.exercises {
		if e.CategoryID == categoryID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeWorkoutRepo) GetExerciseByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeWorkoutRepo) CountCategories(_ context.Context) (int64, error) {
	return int64(len(r.categories)), nil
}

type fakeConversationRepo struct {
	conversations map[primitive.ObjectID]*domain.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[primitive.ObjectID]*domain.Conversation)}
}

func (r *fakeConversationRepo) Create(_ context.Context, convo *domain.Conversation) (primitive.ObjectID, error) {
	cp := *convo
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	cp.ParticipantIDs = append([]primitive.ObjectID(nil), convo.ParticipantIDs...)
	r.conversations[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConversationRepo) ListByParticipant(_ context.Context, userID primitive.ObjectID) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeConversationRepo) FindDirect(_ context.Context, a, b primitive.ObjectID) (*domain.Conversation, error) {
	for _, c := range r.conversations {
		if c.Type == domain.ConversationDirect && len(c.ParticipantIDs) == 2 &&
			c.HasParticipant(a) && c.HasParticipant(b) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeConversationRepo) Touch(_ context.Context, id primitive.ObjectID) error {
	c, ok := r.conversations[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	return nil
}

type fakeMessageRepo struct {
	messages []*domain.Message
	receipts map[primitive.ObjectID]map[primitive.ObjectID]bool // messageID -> userID
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{receipts: make(map[primitive.ObjectID]map[primitive.ObjectID]bool)}
}

func (r *fakeMessageRepo) Append(_ context.Context, message *domain.Message) (primitive.ObjectID, error) {
	// Mirrors the partial unique index on (conversationId, clientRef):
	// messages without a client ref are never in conflict.
	if message.ClientRef != "" {
		for _, m := range r.messages {
			if m.ConversationID == message.ConversationID && m.ClientRef == message.ClientRef {
				return primitive.NilObjectID, repository.ErrConflict
			}
		}
	}
	cp := *message
	cp.ID = primitive.NewObjectID()
	r.messages = append(r.messages, &cp)
	return cp.ID, nil
}

func (r *fakeMessageRepo) GetByClientRef(_ context.Context, conversationID primitive.ObjectID, clientRef string) (*domain.Message, error) {
	for _, m := range r.messages {
		if m.ConversationID == conversationID && m.ClientRef == clientRef {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID primitive.ObjectID, limit int64) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (r *fakeMessageRepo) GetLast(_ context.Context, conversationID primitive.ObjectID) (*domain.Message, error) {
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].ConversationID == conversationID {
			cp := *r.messages[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, conversationID, userID primitive.ObjectID) error {
	for _, m := range r.messages {
		if m.ConversationID != conversationID || m.SenderID == userID {
			continue
		}
		if r.receipts[m.ID] == nil {
			r.receipts[m.ID] = make(map[primitive.ObjectID]bool)
		}
		r.receipts[m.ID][userID] = true
	}
	return nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, conversationID, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ConversationID != conversationID || m.SenderID == userID {
			continue
		}
		if !r.receipts[m.ID][userID] {
			count++
		}
	}
	return count, nil
}

type fakeCalendarRepo struct {
	calendars map[primitive.ObjectID]*domain.Calendar
}

func newFakeCalendarRepo() *fakeCalendarRepo {
	return &fakeCalendarRepo{calendars: make(map[primitive.ObjectID]*domain.Calendar)}
}

func (r *fakeCalendarRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Calendar, error) {
	c, ok := r.calendars[userID]
	if !ok {
		return &domain.Calendar{UserID: userID, Events: domain.EventsMap{}}, nil
	}
	cp := *c
	cp.Events = domain.EventsMap{}
	for date, events := range c.Events {
		cp.Events[date] = append([]domain.Event(nil), events...)
	}
	return &cp, nil
}

func (r *fakeCalendarRepo) Put(_ context.Context, userID primitive.ObjectID, events domain.EventsMap) (*domain.Calendar, error) {
	cal := &domain.Calendar{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Events:    events,
		UpdatedAt: time.Now(),
	}
	if existing, ok := r.calendars[userID]; ok {
		cal.ID = existing.ID
	}
	r.calendars[userID] = cal
	cp := *cal
	return &cp, nil
}

type fakeNoteRepo struct {
	notes map[primitive.ObjectID]*domain.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[primitive.ObjectID]*domain.Note)}
}

func (r *fakeNoteRepo) Create(_ context.Context, note *domain.Note) (primitive.ObjectID, error) {
	cp := *note
	cp.ID = primitive.NewObjectID()
	r.notes[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeNoteRepo) ListByAuthor(_ context.Context, authorID primitive.ObjectID) ([]domain.Note, error) {
	var out []domain.Note
	for _, n := range r.notes {
		if n.AuthorID == authorID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id, authorID primitive.ObjectID) error {
	n, ok := r.notes[id]
	if !ok || n.AuthorID != authorID {
		return repository.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

// fakeFileStorage records generated URLs and deletions.
type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"temanin/server/internal/models"

	"github.com/google/uuid"
)

// Memory is an in-process implementation of the store interfaces. It backs
// the test suite and local development without a database.
type Memory struct {
	mu sync.Mutex

	users     map[string]models.User
	relations map[string]map[string]Rel // userID -> otherID -> rel
	messages  []models.Message
	groups    map[string]models.Group
	members   map[string]map[string]time.Time // groupID -> userID -> joinedAt
	groupMsgs map[string][]models.GroupMessage
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]models.User),
		relations: make(map[string]map[string]Rel),
		groups:    make(map[string]models.Group),
		members:   make(map[string]map[string]time.Time),
		groupMsgs: make(map[string][]models.GroupMessage),
	}
}

// AddUser seeds a user record and returns it with a generated id
func (m *Memory) AddUser(username string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	u := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		LastSeen:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.users[u.ID] = u
	return u
}

// ---------- UserStore ----------

func (m *Memory) UserByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) UsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *Memory) TouchLastSeen(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		u.LastSeen = time.Now()
		m.users[id] = u
	}
	return nil
}

// ---------- RelationStore ----------

func (m *Memory) Relation(_ context.Context, userID, otherID string) (Rel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.relations[userID][otherID], nil
}

func (m *Memory) RelationsOf(_ context.Context, userID string, rel Rel) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := []string{}
	for otherID, r := range m.relations[userID] {
		if r == rel {
			ids = append(ids, otherID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) SetRelation(_ context.Context, userID, otherID string, rel Rel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.relations[userID] == nil {
		m.relations[userID] = make(map[string]Rel)
	}
	m.relations[userID][otherID] = rel
	return nil
}

func (m *Memory) ClearRelation(_ context.Context, userID, otherID string, rel Rel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.relations[userID][otherID] == rel {
		delete(m.relations[userID], otherID)
	}
	return nil
}

// ---------- MessageStore ----------

func (m *Memory) InsertMessage(_ context.Context, senderID, recipientID, content string, file *models.FileMeta) (models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := models.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		File:        file,
		CreatedAt:   time.Now(),
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *Memory) Conversation(_ context.Context, userID, otherID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := []models.Message{}
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.RecipientID == otherID) ||
			(msg.SenderID == otherID && msg.RecipientID == userID) {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (m *Memory) MarkRead(_ context.Context, readerID, senderID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for i, msg := range m.messages {
		if msg.RecipientID == readerID && msg.SenderID == senderID && !msg.Read {
			m.messages[i].Read = true
			count++
		}
	}
	return count, nil
}

// ---------- GroupStore ----------

func (m *Memory) CreateGroup(_ context.Context, name, description, creatorID string, memberIDs []string) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := models.Group{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		CreatedAt:   time.Now(),
	}
	m.groups[g.ID] = g

	m.members[g.ID] = map[string]time.Time{creatorID: time.Now()}
	for _, id := range memberIDs {
		m.members[g.ID][id] = time.Now()
	}
	return g, nil
}

func (m *Memory) Group(_ context.Context, groupID string) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[groupID]
	if !ok {
		return models.Group{}, ErrNotFound
	}
	return g, nil
}

func (m *Memory) GroupsOf(_ context.Context, userID string) ([]models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups := []models.Group{}
	for id, members := range m.members {
		if _, ok := members[userID]; ok {
			groups = append(groups, m.groups[id])
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt.After(groups[j].CreatedAt) })
	return groups, nil
}

func (m *Memory) UpdateGroup(_ context.Context, groupID, name, description string) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[groupID]
	if !ok {
		return models.Group{}, ErrNotFound
	}
	if name != "" {
		g.Name = name
	}
	if description != "" {
		g.Description = description
	}
	m.groups[groupID] = g
	return g, nil
}

func (m *Memory) DeleteGroup(_ context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[groupID]; !ok {
		return ErrNotFound
	}
	delete(m.groups, groupID)
	delete(m.members, groupID)
	delete(m.groupMsgs, groupID)
	return nil
}

func (m *Memory) MemberIDs(_ context.Context, groupID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := []string{}
	for id := range m.members[groupID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.members[groupID][userID]
	return ok, nil
}

func (m *Memory) AddMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.members[groupID] == nil {
		m.members[groupID] = make(map[string]time.Time)
	}
	if _, ok := m.members[groupID][userID]; !ok {
		m.members[groupID][userID] = time.Now()
	}
	return nil
}

func (m *Memory) RemoveMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.members[groupID], userID)
	return nil
}

func (m *Memory) AppendGroupMessage(_ context.Context, groupID, senderID, content string, file *models.FileMeta) (models.GroupMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[groupID]; !ok {
		return models.GroupMessage{}, ErrNotFound
	}
	msg := models.GroupMessage{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		SenderID:  senderID,
		Content:   content,
		File:      file,
		CreatedAt: time.Now(),
	}
	m.groupMsgs[groupID] = append(m.groupMsgs[groupID], msg)
	return msg, nil
}

func (m *Memory) GroupMessages(_ context.Context, groupID string) ([]models.GroupMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.GroupMessage{}, m.groupMsgs[groupID]...), nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"temanin/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements the store interfaces on top of a pgx pool
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// ---------- UserStore ----------

const userColumns = `id, username, email, profile_picture, bio, last_seen, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.ProfilePicture, &u.Bio,
		&u.LastSeen, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func (p *Postgres) UserByID(ctx context.Context, id string) (models.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (p *Postgres) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *Postgres) TouchLastSeen(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE users SET last_seen = $1, updated_at = $1 WHERE id = $2
	`, time.Now(), id)
	return err
}

// ---------- RelationStore ----------

func (p *Postgres) Relation(ctx context.Context, userID, otherID string) (Rel, error) {
	var rel Rel
	err := p.pool.QueryRow(ctx, `
		SELECT rel FROM user_relations WHERE user_id = $1 AND other_id = $2
	`, userID, otherID).Scan(&rel)
	if errors.Is(err, pgx.ErrNoRows) {
		return RelNone, nil
	}
	if err != nil {
		return RelNone, fmt.Errorf("failed to query relation: %w", err)
	}
	return rel, nil
}

func (p *Postgres) RelationsOf(ctx context.Context, userID string, rel Rel) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT other_id FROM user_relations WHERE user_id = $1 AND rel = $2
	`, userID, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) SetRelation(ctx context.Context, userID, otherID string, rel Rel) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO user_relations (user_id, other_id, rel)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, other_id) DO UPDATE SET rel = EXCLUDED.rel
	`, userID, otherID, rel)
	return err
}

func (p *Postgres) ClearRelation(ctx context.Context, userID, otherID string, rel Rel) error {
	_, err := p.pool.Exec(ctx, `
		DELETE FROM user_relations WHERE user_id = $1 AND other_id = $2 AND rel = $3
	`, userID, otherID, rel)
	return err
}

// ---------- MessageStore ----------

const messageColumns = `id, sender_id, recipient_id, content, read,
	file_name, file_original_name, file_type, file_size, file_url, created_at`

func scanMessage(row pgx.Row) (models.Message, error) {
	var m models.Message
	var fileName, fileOriginal, fileType, fileURL *string
	var fileSize *int64

	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.Read,
		&fileName, &fileOriginal, &fileType, &fileSize, &fileURL, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Message{}, ErrNotFound
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to scan message: %w", err)
	}

	if fileName != nil {
		m.File = &models.FileMeta{FileName: *fileName}
		if fileOriginal != nil {
			m.File.OriginalName = *fileOriginal
		}
		if fileType != nil {
			m.File.FileType = *fileType
		}
		if fileSize != nil {
			m.File.FileSize = *fileSize
		}
		if fileURL != nil {
			m.File.URL = *fileURL
		}
	}
	return m, nil
}

func fileFields(file *models.FileMeta) (name, original, ftype *string, size *int64, url *string) {
	if file == nil {
		return nil, nil, nil, nil, nil
	}
	return &file.FileName, &file.OriginalName, &file.FileType, &file.FileSize, &file.URL
}

func (p *Postgres) InsertMessage(ctx context.Context, senderID, recipientID, content string, file *models.FileMeta) (models.Message, error) {
	name, original, ftype, size, url := fileFields(file)
	row := p.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, recipient_id, content, read,
			file_name, file_original_name, file_type, file_size, file_url, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6, $7, $8, $9)
		RETURNING `+messageColumns,
		senderID, recipientID, content, name, original, ftype, size, url, time.Now())
	return scanMessage(row)
}

func (p *Postgres) Conversation(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at
	`, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (p *Postgres) MarkRead(ctx context.Context, readerID, senderID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `
		UPDATE messages SET read = TRUE
		WHERE recipient_id = $1 AND sender_id = $2 AND read = FALSE
	`, readerID, senderID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------- GroupStore ----------

const groupColumns = `id, name, description, picture, creator_id, created_at`

func scanGroup(row pgx.Row) (models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Picture, &g.CreatorID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to scan group: %w", err)
	}
	return g, nil
}

func (p *Postgres) CreateGroup(ctx context.Context, name, description, creatorID string, memberIDs []string) (models.Group, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var g models.Group
	g, err = scanGroup(tx.QueryRow(ctx, `
		INSERT INTO groups (name, description, creator_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+groupColumns,
		name, description, creatorID, time.Now()))
	if err != nil {
		return models.Group{}, err
	}

	// The creator is always a member
	members := append([]string{creatorID}, memberIDs...)
	for _, memberID := range members {
		_, err = tx.Exec(ctx, `
			INSERT INTO group_members (group_id, user_id, joined_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_id, user_id) DO NOTHING
		`, g.ID, memberID, time.Now())
		if err != nil {
			return models.Group{}, fmt.Errorf("failed to add member: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Group{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return g, nil
}

func (p *Postgres) Group(ctx context.Context, groupID string) (models.Group, error) {
	return scanGroup(p.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, groupID))
}

func (p *Postgres) GroupsOf(ctx context.Context, userID string) ([]models.Group, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT g.id, g.name, g.description, g.picture, g.creator_id, g.created_at
		FROM groups g
		INNER JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (p *Postgres) UpdateGroup(ctx context.Context, groupID, name, description string) (models.Group, error) {
	return scanGroup(p.pool.QueryRow(ctx, `
		UPDATE groups
		SET name = COALESCE(NULLIF($2, ''), name),
			description = COALESCE(NULLIF($3, ''), description)
		WHERE id = $1
		RETURNING `+groupColumns,
		groupID, name, description))
}

func (p *Postgres) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`, groupID, userID).Scan(&exists)
	return exists, err
}

func (p *Postgres) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID, time.Now())
	return err
}

func (p *Postgres) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := p.pool.Exec(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	return err
}

const groupMessageColumns = `id, group_id, sender_id, content,
	file_name, file_original_name, file_type, file_size, file_url, created_at`

func scanGroupMessage(row pgx.Row) (models.GroupMessage, error) {
	var m models.GroupMessage
	var fileName, fileOriginal, fileType, fileURL *string
	var fileSize *int64

	err := row.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.Content,
		&fileName, &fileOriginal, &fileType, &fileSize, &fileURL, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.GroupMessage{}, ErrNotFound
	}
	if err != nil {
		return models.GroupMessage{}, fmt.Errorf("failed to scan group message: %w", err)
	}

	if fileName != nil {
		m.File = &models.FileMeta{FileName: *fileName}
		if fileOriginal != nil {
			m.File.OriginalName = *fileOriginal
		}
		if fileType != nil {
			m.File.FileType = *fileType
		}
		if fileSize != nil {
			m.File.FileSize = *fileSize
		}
		if fileURL != nil {
			m.File.URL = *fileURL
		}
	}
	return m, nil
}

func (p *Postgres) AppendGroupMessage(ctx context.Context, groupID, senderID, content string, file *models.FileMeta) (models.GroupMessage, error) {
	name, original, ftype, size, url := fileFields(file)
	return scanGroupMessage(p.pool.QueryRow(ctx, `
		INSERT INTO group_messages (group_id, sender_id, content,
			file_name, file_original_name, file_type, file_size, file_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+groupMessageColumns,
		groupID, senderID, content, name, original, ftype, size, url, time.Now()))
}

func (p *Postgres) GroupMessages(ctx context.Context, groupID string) ([]models.GroupMessage, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+groupMessageColumns+` FROM group_messages
		WHERE group_id = $1
		ORDER BY created_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group messages: %w", err)
	}
	defer rows.Close()

	messages := []models.GroupMessage{}
	for rows.Next() {
		m, err := scanGroupMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

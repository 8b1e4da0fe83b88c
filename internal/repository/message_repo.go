package repository

import (
	"context"
	"time"

	"chatapi/internal/domain"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// messageModel keys on an autoincrement seq so insertion order survives
// equal timestamps; the public id is a separate unique uuid column.
type messageModel struct {
	Seq         int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID          string    `gorm:"column:id;uniqueIndex;size:36;not null"`
	UserID      string    `gorm:"column:user_id;index;not null"`
	Username    string    `gorm:"column:username;not null"`
	Content     string    `gorm:"column:content;not null"`
	RecipientID *string   `gorm:"column:recipient_id;index"`
	Timestamp   time.Time `gorm:"column:timestamp;index"`
}

func (messageModel) TableName() string { return "messages" }

func toDomainMessage(m messageModel) domain.Message {
	return domain.Message{
		ID:          m.ID,
		UserID:      m.UserID,
		Username:    m.Username,
		Content:     m.Content,
		RecipientID: m.RecipientID,
		Timestamp:   m.Timestamp,
		Seq:         m.Seq,
	}
}

// Create inserts msg and sets msg.Seq from the database.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	m := messageModel{
		ID:          msg.ID,
		UserID:      msg.UserID,
		Username:    msg.Username,
		Content:     msg.Content,
		RecipientID: msg.RecipientID,
		Timestamp:   msg.Timestamp.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	msg.Seq = m.Seq
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var m messageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	msg := toDomainMessage(m)
	return &msg, nil
}

// ListVisibleTo returns public messages plus those userID wrote or received.
func (r *MessageRepository) ListVisibleTo(ctx context.Context, userID string) ([]domain.Message, error) {
	return r.find(r.db.WithContext(ctx).
		Where("user_id = ? OR recipient_id = ? OR recipient_id IS NULL", userID, userID))
}

func (r *MessageRepository) ListByAuthor(ctx context.Context, userID string) ([]domain.Message, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&messageModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MessageRepository) find(q *gorm.DB) ([]domain.Message, error) {
	var rows []messageModel
	if err := q.Order("timestamp ASC").Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainMessage(m))
	}
	return out, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/s21platform/room-service/internal/config"
	"github.com/s21platform/room-service/internal/model"
	"github.com/s21platform/room-service/internal/presence"
)

type Repository struct {
	connection *sqlx.DB
}

func New(cfg *config.Config) *Repository {
	conStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.Host, cfg.Postgres.Port)

	conn, err := sqlx.Connect("postgres", conStr)
	if err != nil {
		log.Fatal("error connect: ", err)
	}

	return &Repository{
		connection: conn,
	}
}

func (r *Repository) Close() {
	_ = r.connection.Close()
}

func (r *Repository) CreateRoom(ctx context.Context, room *model.Room) (string, error) {
	query, args, err := sq.Insert("rooms").
		Columns("owner_id", "name", "kind", "video_url").
		Values(room.OwnerID, room.Name, room.Kind, room.VideoURL).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build sql query: %v", err)
	}

	var roomID string
	err = r.Chk(ctx).GetContext(ctx, &roomID, query, args...)
	if err != nil {
		return "", err
	}

	return roomID, nil
}

func (r *Repository) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	query, args, err := sq.Select(
		"id",
		"owner_id",
		"name",
		"kind",
		"video_url",
		"created_at",
	).
		From("rooms").
		Where(sq.Eq{"id": roomID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var room model.Room
	err = r.Chk(ctx).GetContext(ctx, &room, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, presence.ErrRoomNotFound
		}
		return nil, err
	}

	return &room, nil
}

// AddRoomMember is idempotent: a concurrent insert of the same pair is
// resolved by the uniqueness constraint and reported as success.
func (r *Repository) AddRoomMember(ctx context.Context, roomID, userID string) error {
	query, args, err := sq.Insert("room_members").
		Columns("room_id", "user_id").
		Values(roomID, userID).
		Suffix("ON CONFLICT (room_id, user_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)

	return err
}

// RemoveRoomMember deletes the pair; deleting an absent row is a no-op.
func (r *Repository) RemoveRoomMember(ctx context.Context, roomID, userID string) error {
	query, args, err := sq.Delete("room_members").
		Where(sq.And{
			sq.Eq{"room_id": roomID},
			sq.Eq{"user_id": userID},
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)

	return err
}

func (r *Repository) ListRoomMembers(ctx context.Context, roomID string) ([]string, error) {
	query, args, err := sq.Select("user_id").
		From("room_members").
		Where(sq.Eq{"room_id": roomID}).
		OrderBy("joined_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var userIDs []string
	err = r.Chk(ctx).SelectContext(ctx, &userIDs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %v", err)
	}

	return userIDs, nil
}

func (r *Repository) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	query, args, err := sq.
		Select("COUNT(*) > 0").
		From("room_members").
		Where(sq.And{
			sq.Eq{"room_id": roomID},
			sq.Eq{"user_id": userID},
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build sql query: %v", err)
	}

	var isMember bool
	err = r.Chk(ctx).GetContext(ctx, &isMember, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %v", err)
	}

	return isMember, nil
}

func (r *Repository) GetUserRooms(ctx context.Context, userID string) ([]string, error) {
	query, args, err := sq.Select("room_id").
		From("room_members").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var roomIDs []string
	err = r.Chk(ctx).SelectContext(ctx, &roomIDs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user rooms: %v", err)
	}

	return roomIDs, nil
}

func (r *Repository) GetUserProfiles(ctx context.Context, userIDs []string) ([]model.UserProfile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sq.Select(
		"id",
		"nickname",
		"avatar_url",
	).
		From("users").
		Where(sq.Eq{"id": userIDs}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var profiles []model.UserProfile
	err = r.Chk(ctx).SelectContext(ctx, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profiles: %v", err)
	}

	return profiles, nil
}

func (r *Repository) UpsertUser(ctx context.Context, profile *model.UserProfile) error {
	query, args, err := sq.Insert("users").
		Columns("id", "nickname", "avatar_url").
		Values(profile.UserID, profile.Nickname, profile.AvatarURL).
		Suffix("ON CONFLICT (id) DO UPDATE SET nickname = EXCLUDED.nickname, avatar_url = EXCLUDED.avatar_url").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.Chk(ctx).ExecContext(ctx, query, args...)

	return err
}

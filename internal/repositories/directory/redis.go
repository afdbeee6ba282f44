package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	roomKeyPrefix = "room:"
	openRoomsKey  = "rooms:open"
)

// Config holds configuration for the Redis directory repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed directory repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func roomKey(roomID string) string {
	return fmt.Sprintf("%s%s", roomKeyPrefix, roomID)
}

// SaveRoom persists a room snapshot to Redis
func (r *redisRepository) SaveRoom(ctx context.Context, input *SaveRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}

	if input.Room.ID == "" {
		return errors.New("room ID cannot be empty")
	}

	roomJSON, err := json.Marshal(input.Room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, roomKey(input.Room.ID), roomJSON, 0)

	// Closed rooms drop out of the open index but keep their snapshot until deleted
	if input.Room.Status == models.RoomStatusClosed {
		pipe.SRem(ctx, openRoomsKey, input.Room.ID)
	} else {
		pipe.SAdd(ctx, openRoomsKey, input.Room.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

// DeleteRoom removes a room snapshot from Redis. Deleting a missing room is not an error.
func (r *redisRepository) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, roomKey(input.RoomID))
	pipe.SRem(ctx, openRoomsKey, input.RoomID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}

// ListOpenRooms retrieves all open room snapshots from Redis, ordered by room ID
func (r *redisRepository) ListOpenRooms(ctx context.Context, input *ListOpenRoomsInput) (*ListOpenRoomsOutput, error) {
	roomIDs, err := r.client.SMembers(ctx, openRoomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get open room IDs: %w", err)
	}

	if len(roomIDs) == 0 {
		return &ListOpenRoomsOutput{
			Rooms: []*models.RoomSnapshot{},
		}, nil
	}

	sort.Strings(roomIDs)

	pipe := r.client.Pipeline()
	roomCommands := make([]*redis.StringCmd, len(roomIDs))
	for i, roomID := range roomIDs {
		roomCommands[i] = pipe.Get(ctx, roomKey(roomID))
	}

	// A missing key surfaces as redis.Nil from Exec; handled per command below
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get open rooms: %w", err)
	}

	rooms := make([]*models.RoomSnapshot, 0, len(roomIDs))
	var stale []interface{}
	for i, cmd := range roomCommands {
		roomJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Room was deleted between reading the index and fetching the snapshot
				stale = append(stale, roomIDs[i])
				continue
			}
			return nil, fmt.Errorf("failed to get room %s: %w", roomIDs[i], err)
		}

		var room models.RoomSnapshot
		if err := json.Unmarshal([]byte(roomJSON), &room); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room %s: %w", roomIDs[i], err)
		}

		if room.Status == models.RoomStatusClosed {
			continue
		}

		rooms = append(rooms, &room)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, openRoomsKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune stale room IDs: %w", err)
		}
	}

	return &ListOpenRoomsOutput{
		Rooms: rooms,
	}, nil
}

package directory

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	ctx     context.Context
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.ctx = context.Background()
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) snapshot(id string, status models.RoomStatus) *models.RoomSnapshot {
	return &models.RoomSnapshot{
		ID:       id,
		Status:   status,
		Capacity: 2,
		Players: []models.Player{
			{ID: "admin-" + id, Name: "Alice", IsAdmin: true},
			{ID: "player-" + id, Name: "Bob"},
		},
		UpdatedAt: s.testNow,
	}
}

func (s *RedisRepositoryTestSuite) isOpen(roomID string) bool {
	// the set disappears with its last member, which SIsMember reports as false
	isMember, err := s.client.SIsMember(s.ctx, openRoomsKey, roomID).Result()
	s.Require().NoError(err)
	return isMember
}

func (s *RedisRepositoryTestSuite) TestNewRedis() {
	_, err := NewRedis(nil)
	s.Error(err)

	_, err = NewRedis(&Config{})
	s.Error(err)

	// construction does not dial; the process pings once at startup
	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer unreachable.Close()
	_, err = NewRedis(&Config{RedisClient: unreachable})
	s.NoError(err)
}

func (s *RedisRepositoryTestSuite) TestSaveRoom() {
	room := s.snapshot("room-1", models.RoomStatusMainPlayerThinking)

	err := s.repo.SaveRoom(s.ctx, &SaveRoomInput{Room: room})
	s.Require().NoError(err)

	out, err := s.repo.ListOpenRooms(s.ctx, &ListOpenRoomsInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Rooms, 1)

	retrieved := out.Rooms[0]
	s.Equal("room-1", retrieved.ID)
	s.Equal(models.RoomStatusMainPlayerThinking, retrieved.Status)
	s.Equal(2, retrieved.Capacity)
	s.Require().Len(retrieved.Players, 2)
	s.True(retrieved.Players[0].IsAdmin)
	s.Equal("Bob", retrieved.Players[1].Name)
	s.Equal(s.testNow.Unix(), retrieved.UpdatedAt.Unix())

	s.True(s.mr.Exists("room:room-1"))
	s.True(s.isOpen("room-1"))
}

func (s *RedisRepositoryTestSuite) TestSaveRoomValidatesInput() {
	s.Error(s.repo.SaveRoom(s.ctx, nil))
	s.Error(s.repo.SaveRoom(s.ctx, &SaveRoomInput{}))
	s.Error(s.repo.SaveRoom(s.ctx, &SaveRoomInput{Room: &models.RoomSnapshot{}}))
}

func (s *RedisRepositoryTestSuite) TestDeleteRoom() {
	s.Require().NoError(s.repo.SaveRoom(s.ctx, &SaveRoomInput{
		Room: s.snapshot("room-1", models.RoomStatusWaitingForPlayers),
	}))

	err := s.repo.DeleteRoom(s.ctx, &DeleteRoomInput{RoomID: "room-1"})
	s.Require().NoError(err)
	s.False(s.mr.Exists("room:room-1"))

	out, err := s.repo.ListOpenRooms(s.ctx, &ListOpenRoomsInput{})
	s.Require().NoError(err)
	s.Empty(out.Rooms)

	// deleting twice is fine
	s.NoError(s.repo.DeleteRoom(s.ctx, &DeleteRoomInput{RoomID: "room-1"}))
}

func (s *RedisRepositoryTestSuite) TestListOpenRoomsExcludesClosed() {
	s.Require().NoError(s.repo.SaveRoom(s.ctx, &SaveRoomInput{
		Room: s.snapshot("room-b", models.RoomStatusGameDone),
	}))
	s.Require().NoError(s.repo.SaveRoom(s.ctx, &SaveRoomInput{
		Room: s.snapshot("room-a", models.RoomStatusWaitingForPlayers),
	}))
	s.Require().NoError(s.repo.SaveRoom(s.ctx, &SaveRoomInput{
		Room: s.snapshot("room-c", models.RoomStatusClosed),
	}))

	out, err := s.repo.ListOpenRooms(s.ctx, &ListOpenRoomsInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Rooms, 2)
	s.Equal("room-a", out.Rooms[0].ID)
	s.Equal("room-b", out.Rooms[1].ID)
}

func (s *RedisRepositoryTestSuite) TestListOpenRoomsPrunesStaleIndexEntries() {
	s.Require().NoError(s.repo.SaveRoom(s.ctx, &SaveRoomInput{
		Room: s.snapshot("room-1", models.RoomStatusWaitingForPlayers),
	}))
	s.mr.Del("room:room-1")

	out, err := s.repo.ListOpenRooms(s.ctx, &ListOpenRoomsInput{})
	s.Require().NoError(err)
	s.Empty(out.Rooms)

	s.False(s.isOpen("room-1"))
	s.False(s.mr.Exists(openRoomsKey))
}

func (s *RedisRepositoryTestSuite) TestSaveRoomClosedLeavesOpenIndex() {
	room := s.snapshot("room-1", models.RoomStatusMainPlayerThinking)
	s.Require().NoError(s.repo.SaveRoom(s.ctx, &SaveRoomInput{Room: room}))

	room.Status = models.RoomStatusClosed
	s.Require().NoError(s.repo.SaveRoom(s.ctx, &SaveRoomInput{Room: room}))

	s.False(s.isOpen("room-1"))
	s.False(s.mr.Exists(openRoomsKey))
	// the snapshot itself stays until the room is deleted
	s.True(s.mr.Exists("room:room-1"))
}

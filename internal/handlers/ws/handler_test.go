package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/outlast/internal/common/clock"
	"github.com/KirkDiggler/outlast/internal/common/uuid"
	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/repositories/directory"
	"github.com/KirkDiggler/outlast/internal/services/broadcast"
	"github.com/KirkDiggler/outlast/internal/services/evaluation"
	"github.com/KirkDiggler/outlast/internal/services/evaluator"
	"github.com/KirkDiggler/outlast/internal/services/evaluator/mocks"
	"github.com/KirkDiggler/outlast/internal/services/room"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const readTimeout = 3 * time.Second

type HandlerTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockEvaluator *mocks.MockEvaluator
	mr            *miniredis.Miniredis
	client        *redis.Client
	rooms         room.Service
	broadcaster   *broadcast.Broadcaster
	handler       *Handler
	server        *httptest.Server
	ctx           context.Context
	clients       []*websocket.Conn
}

func (s *HandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockEvaluator = mocks.NewMockEvaluator(s.mockCtrl)
	s.ctx = context.Background()
	s.clients = nil

	// "run" always works, anything else does not
	s.mockEvaluator.EXPECT().
		Evaluate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *evaluator.EvaluateInput) (*evaluator.EvaluateOutput, error) {
			if input.Answer == "run" {
				return &evaluator.EvaluateOutput{Verdict: models.VerdictSurvived, Commentary: "Cardio pays off."}, nil
			}
			return &evaluator.EvaluateOutput{Verdict: models.VerdictDied, Commentary: "Should have run."}, nil
		}).AnyTimes()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	dir, err := directory.NewRedis(&directory.Config{RedisClient: s.client})
	s.Require().NoError(err)

	rooms, err := room.New(&room.Config{
		Directory:     dir,
		Clock:         clock.Fixed(time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)),
		UUIDGenerator: uuid.New(),
		Logger:        zerolog.Nop(),
	})
	s.Require().NoError(err)
	s.rooms = rooms

	coordinator, err := evaluation.New(&evaluation.Config{
		Rooms:       rooms,
		Evaluator:   s.mockEvaluator,
		Timeout:     time.Second,
		Concurrency: 2,
		Logger:      zerolog.Nop(),
	})
	s.Require().NoError(err)

	s.broadcaster = broadcast.New(&broadcast.Config{Logger: zerolog.Nop()})

	handler, err := New(&Config{
		Rooms:         rooms,
		Coordinator:   coordinator,
		Broadcaster:   s.broadcaster,
		UUIDGenerator: uuid.New(),
		Logger:        zerolog.Nop(),
	})
	s.Require().NoError(err)
	s.handler = handler

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/game", handler.ServeGame)
	mux.HandleFunc("/ws/rooms", handler.ServeMonitor)
	s.server = httptest.NewServer(mux)
}

func (s *HandlerTestSuite) TearDownTest() {
	for _, c := range s.clients {
		_ = c.Close()
	}
	s.handler.Shutdown()
	s.server.Close()
	s.client.Close()
	s.mr.Close()
}

func (s *HandlerTestSuite) dial(path string, query url.Values) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(s.server.URL, "http") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	s.Require().NoError(err)
	s.clients = append(s.clients, c)
	return c
}

func (s *HandlerTestSuite) connect(roomID, playerID string) *websocket.Conn {
	return s.dial("/ws/game", url.Values{"roomId": {roomID}, "userId": {playerID}})
}

func (s *HandlerTestSuite) send(c *websocket.Conn, text string) {
	s.Require().NoError(c.WriteMessage(websocket.TextMessage, []byte(text)))
}

// readUntil reads messages until one equals want and returns everything read, want included
func (s *HandlerTestSuite) readUntil(c *websocket.Conn, want string) []string {
	var got []string
	for {
		_ = c.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := c.ReadMessage()
		if err != nil {
			s.FailNowf("did not receive expected message", "want %q, got %q, err %v", want, got, err)
		}
		got = append(got, string(data))
		if string(data) == want {
			return got
		}
	}
}

// expectClose reads until the server closes the connection and checks the close code
func (s *HandlerTestSuite) expectClose(c *websocket.Conn, code int) {
	for {
		_ = c.SetReadDeadline(time.Now().Add(readTimeout))
		_, _, err := c.ReadMessage()
		if err == nil {
			continue
		}
		closeErr, ok := err.(*websocket.CloseError)
		s.Require().Truef(ok, "expected close frame, got %v", err)
		s.Equal(code, closeErr.Code)
		return
	}
}

func countPrefix(messages []string, prefix string) int {
	n := 0
	for _, m := range messages {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

// twoPlayerRoom creates a full two-player room and connects both players.
// It returns once both connections have seen each other join.
func (s *HandlerTestSuite) twoPlayerRoom() (roomID, aliceID, bobID string, alice, bob *websocket.Conn) {
	created, err := s.handler.CreateRoom(s.ctx, &room.CreateRoomInput{AdminName: "alice", Capacity: 2})
	s.Require().NoError(err)
	joined, err := s.handler.JoinRoom(s.ctx, &room.AddPlayerInput{RoomID: created.RoomID, Name: "bob"})
	s.Require().NoError(err)
	s.Require().True(joined.Started)

	alice = s.connect(created.RoomID, created.PlayerID)
	s.readUntil(alice, msgEnterScenario)

	bob = s.connect(created.RoomID, joined.PlayerID)
	s.readUntil(bob, msgWaitForScenario)
	s.readUntil(alice, joinedMessage("bob"))

	return created.RoomID, created.PlayerID, joined.PlayerID, alice, bob
}

// answerRound plays a round through to GAME_DONE
func (s *HandlerTestSuite) answerRound(alice, bob *websocket.Conn) (aliceMsgs, bobMsgs []string) {
	s.send(alice, "zombies in the mall")
	answering := statusMessage(models.RoomStatusWaitingForAnswers)
	s.Contains(s.readUntil(alice, answering), scenarioMessage("zombies in the mall"))
	s.Contains(s.readUntil(bob, answering), scenarioMessage("zombies in the mall"))

	s.send(alice, "run")
	s.readUntil(alice, msgAnswerSaved)
	s.send(bob, "hide")
	s.readUntil(bob, msgAnswerSaved)

	aliceMsgs = s.readUntil(alice, msgContinuePrompt)
	bobMsgs = s.readUntil(bob, statusMessage(models.RoomStatusGameDone))
	return aliceMsgs, bobMsgs
}

func (s *HandlerTestSuite) TestConnect_MissingParamsIsBadRequest() {
	c := s.dial("/ws/game", url.Values{"roomId": {"some-room"}})
	s.expectClose(c, websocket.CloseInvalidFramePayloadData)
}

func (s *HandlerTestSuite) TestConnect_UnknownRoomIsNotAcceptable() {
	c := s.connect("missing-room", "missing-player")
	s.expectClose(c, websocket.CloseUnsupportedData)
}

func (s *HandlerTestSuite) TestConnect_UnknownPlayerIsNotAcceptable() {
	created, err := s.handler.CreateRoom(s.ctx, &room.CreateRoomInput{AdminName: "alice", Capacity: 2})
	s.Require().NoError(err)

	c := s.connect(created.RoomID, "stranger")
	s.expectClose(c, websocket.CloseUnsupportedData)
}

func (s *HandlerTestSuite) TestConnect_SoloRoomAsksForScenario() {
	created, err := s.handler.CreateRoom(s.ctx, &room.CreateRoomInput{AdminName: "alice", Capacity: 1})
	s.Require().NoError(err)

	alice := s.connect(created.RoomID, created.PlayerID)
	msgs := s.readUntil(alice, msgEnterScenario)

	s.Equal([]string{
		joinedMessage("alice"),
		statusMessage(models.RoomStatusMainPlayerThinking),
		msgEnterScenario,
	}, msgs)
}

func (s *HandlerTestSuite) TestJoinFillingRoomStartsForConnectedAdmin() {
	created, err := s.handler.CreateRoom(s.ctx, &room.CreateRoomInput{AdminName: "alice", Capacity: 2})
	s.Require().NoError(err)

	alice := s.connect(created.RoomID, created.PlayerID)
	s.readUntil(alice, statusMessage(models.RoomStatusWaitingForPlayers))

	_, err = s.handler.JoinRoom(s.ctx, &room.AddPlayerInput{RoomID: created.RoomID, Name: "bob"})
	s.Require().NoError(err)

	s.readUntil(alice, statusMessage(models.RoomStatusMainPlayerThinking))
	s.readUntil(alice, msgEnterScenario)
}

func (s *HandlerTestSuite) TestAdminDisconnectHandsOverRole() {
	roomID, _, bobID, alice, bob := s.twoPlayerRoom()

	s.Require().NoError(alice.Close())

	msgs := s.readUntil(bob, msgEnterScenario)
	s.Contains(msgs, leftMessage("alice"))
	s.Contains(msgs, msgNewAdmin)

	view, err := s.rooms.GetRoom(s.ctx, &room.GetRoomInput{RoomID: roomID})
	s.Require().NoError(err)
	s.Equal(bobID, view.AdminID)
	s.Len(view.Players, 1)
	s.Equal(models.RoomStatusMainPlayerThinking, view.Status)
}

func (s *HandlerTestSuite) TestPrompt_FollowedByAnsweringStatus() {
	_, _, _, alice, bob := s.twoPlayerRoom()

	s.send(alice, "zombies")

	scenario := scenarioMessage("zombies")
	answering := statusMessage(models.RoomStatusWaitingForAnswers)
	for _, c := range []*websocket.Conn{alice, bob} {
		msgs := s.readUntil(c, scenario)
		s.NotContains(msgs, answering)

		_ = c.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := c.ReadMessage()
		s.Require().NoError(err)
		s.Equal(answering, string(data))
	}
}

func (s *HandlerTestSuite) TestFullRound() {
	roomID, aliceID, bobID, alice, bob := s.twoPlayerRoom()

	aliceMsgs, bobMsgs := s.answerRound(alice, bob)

	s.Contains(aliceMsgs, "[RESULT]: alice → survived\nGPT: Cardio pays off.")
	s.NotContains(aliceMsgs, "[RESULT]: bob → not survived\nGPT: Should have run.")
	s.Contains(bobMsgs, "[RESULT]: bob → not survived\nGPT: Should have run.")

	stats := "[ALL_STATS]\nalice: survived 1, died 0;\nbob: survived 0, died 1;"
	s.Contains(aliceMsgs, stats)
	s.Contains(bobMsgs, stats)
	s.Equal(1, countPrefix(aliceMsgs, "[ALL_STATS]"))
	s.Equal(1, countPrefix(bobMsgs, "[ALL_STATS]"))
	s.Equal(1, countPrefix(aliceMsgs, "[RESULT]"))
	s.NotContains(bobMsgs, msgContinuePrompt)

	view, err := s.rooms.GetRoom(s.ctx, &room.GetRoomInput{RoomID: roomID})
	s.Require().NoError(err)
	s.Equal(models.RoomStatusGameDone, view.Status)
	s.Equal(models.PlayerStats{SurvivedCount: 1}, view.Stats[aliceID])
	s.Equal(models.PlayerStats{DiedCount: 1}, view.Stats[bobID])
}

func (s *HandlerTestSuite) TestContinueRotatesAdmin() {
	roomID, _, bobID, alice, bob := s.twoPlayerRoom()
	s.answerRound(alice, bob)

	s.send(alice, "maybe")
	s.readUntil(alice, msgContinuePrompt)

	s.send(alice, "YES")
	s.readUntil(bob, statusMessage(models.RoomStatusMainPlayerThinking))
	s.readUntil(bob, msgEnterScenario)
	s.readUntil(alice, msgWaitForScenario)

	view, err := s.rooms.GetRoom(s.ctx, &room.GetRoomInput{RoomID: roomID})
	s.Require().NoError(err)
	s.Equal(bobID, view.AdminID)
	s.Empty(view.CurrentPrompt)
	s.Empty(view.Answers)
}

func (s *HandlerTestSuite) TestDeclineClosesRoom() {
	roomID, _, _, alice, bob := s.twoPlayerRoom()
	s.answerRound(alice, bob)
	s.True(s.mr.Exists("room:" + roomID))

	s.send(alice, "no")

	for _, c := range []*websocket.Conn{alice, bob} {
		msgs := s.readUntil(c, msgRoomClosed)
		s.Contains(msgs, statusMessage(models.RoomStatusClosed))
		s.expectClose(c, websocket.CloseNormalClosure)
	}

	_, err := s.rooms.GetRoom(s.ctx, &room.GetRoomInput{RoomID: roomID})
	s.ErrorIs(err, room.ErrRoomNotFound)
	s.False(s.mr.Exists("room:" + roomID))
}

func (s *HandlerTestSuite) TestDisconnectCompletesRound() {
	_, _, _, alice, bob := s.twoPlayerRoom()

	s.send(alice, "zombies in the mall")
	s.readUntil(bob, scenarioMessage("zombies in the mall"))
	s.send(alice, "run")
	s.readUntil(alice, msgAnswerSaved)

	s.Require().NoError(bob.Close())

	msgs := s.readUntil(alice, msgContinuePrompt)
	s.Contains(msgs, leftMessage("bob"))
	s.Contains(msgs, "[RESULT]: alice → survived\nGPT: Cardio pays off.")
	s.Contains(msgs, "[ALL_STATS]\nalice: survived 1, died 0;")
	s.Equal(1, countPrefix(msgs, "[ALL_STATS]"))
}

func (s *HandlerTestSuite) TestKick() {
	roomID, _, bobID, alice, bob := s.twoPlayerRoom()

	s.Require().NoError(s.handler.Kick(s.ctx, &KickInput{RoomID: roomID, PlayerID: bobID}))

	s.expectClose(bob, closeKicked)
	s.readUntil(alice, kickedMessage("bob"))

	view, err := s.rooms.GetRoom(s.ctx, &room.GetRoomInput{RoomID: roomID})
	s.Require().NoError(err)
	s.Len(view.Players, 1)

	err = s.handler.Kick(s.ctx, &KickInput{RoomID: roomID, PlayerID: bobID})
	s.ErrorIs(err, room.ErrPlayerNotFound)
}

func (s *HandlerTestSuite) TestReconnectDisplacesOldConnection() {
	roomID, aliceID, _, alice, bob := s.twoPlayerRoom()

	second := s.connect(roomID, aliceID)
	s.expectClose(alice, closeReplaced)
	s.readUntil(second, msgEnterScenario)

	// the displaced connection going away must not remove alice
	s.send(second, "zombies in the mall")
	s.readUntil(bob, scenarioMessage("zombies in the mall"))

	view, err := s.rooms.GetRoom(s.ctx, &room.GetRoomInput{RoomID: roomID})
	s.Require().NoError(err)
	s.Len(view.Players, 2)
	s.Equal(aliceID, view.AdminID)
}

func (s *HandlerTestSuite) TestOperatorCloseDisconnectsEveryone() {
	roomID, _, _, alice, bob := s.twoPlayerRoom()

	_, err := s.handler.CloseRoom(s.ctx, &room.CloseRoomInput{RoomID: roomID})
	s.Require().NoError(err)

	s.readUntil(alice, msgRoomClosed)
	s.readUntil(bob, msgRoomClosed)
	s.expectClose(alice, websocket.CloseNormalClosure)
	s.expectClose(bob, websocket.CloseNormalClosure)
}

func (s *HandlerTestSuite) TestMonitor() {
	monitor := s.dial("/ws/rooms", nil)
	s.Require().Eventually(func() bool {
		return s.broadcaster.MonitorCount() == 1
	}, readTimeout, 10*time.Millisecond)

	created, err := s.handler.CreateRoom(s.ctx, &room.CreateRoomInput{AdminName: "alice", Capacity: 3})
	s.Require().NoError(err)
	s.readUntil(monitor, created.RoomID+" : CREATED")

	_, err = s.handler.JoinRoom(s.ctx, &room.AddPlayerInput{RoomID: created.RoomID, Name: "bob"})
	s.Require().NoError(err)
	s.readUntil(monitor, created.RoomID+" : PLAYER_JOINED (bob)")

	_, err = s.handler.ForceStart(s.ctx, &room.ForceStartInput{RoomID: created.RoomID})
	s.Require().NoError(err)
	s.readUntil(monitor, created.RoomID+" : FORCE_STARTED")

	_, err = s.handler.CloseRoom(s.ctx, &room.CloseRoomInput{RoomID: created.RoomID})
	s.Require().NoError(err)
	s.readUntil(monitor, created.RoomID+" : CLOSED")
}

func (s *HandlerTestSuite) TestParseDecision() {
	s.Equal(decisionContinue, parseDecision(" Yes "))
	s.Equal(decisionContinue, parseDecision("y"))
	s.Equal(decisionStop, parseDecision("NO"))
	s.Equal(decisionUnknown, parseDecision("perhaps"))
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

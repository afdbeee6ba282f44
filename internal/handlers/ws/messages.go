package ws

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/gorilla/websocket"
)

const (
	systemPrefix = "[SYSTEM]: "

	msgEnterScenario   = systemPrefix + "Enter a scenario"
	msgWaitForScenario = systemPrefix + "The main player is entering a scenario"
	msgAnswerSaved     = systemPrefix + "Answer saved"
	msgContinuePrompt  = systemPrefix + "Do you want to continue? [YES/NO]"
	msgNewAdmin        = systemPrefix + "You are the new admin"
	msgRoomClosed      = systemPrefix + "Room closed"
)

// websocket close codes and reasons
const (
	closeBadRequest    = websocket.CloseInvalidFramePayloadData
	closeNotAcceptable = websocket.CloseUnsupportedData
	closeKicked        = 4002
	closeReplaced      = 4001

	reasonBadRequest    = "bad request"
	reasonNotAcceptable = "not acceptable"
	reasonKicked        = "Kicked by admin"
	reasonReplaced      = "Connected from another session"
	reasonRoomClosed    = "Room closed"
)

func statusMessage(status models.RoomStatus) string {
	return systemPrefix + "Status: " + status.String()
}

func scenarioMessage(prompt string) string {
	return systemPrefix + "Scenario: " + prompt
}

func joinedMessage(name string) string {
	return systemPrefix + name + " joined"
}

func leftMessage(name string) string {
	return systemPrefix + name + " left"
}

func kickedMessage(name string) string {
	return systemPrefix + name + " was kicked"
}

func resultMessage(name string, result models.RoundResult) string {
	return fmt.Sprintf("[RESULT]: %s → %s\nGPT: %s", name, result.Verdict, result.Commentary)
}

// statsMessage lists every present player's record in join order
func statsMessage(view *models.RoomView) string {
	var b strings.Builder
	b.WriteString("[ALL_STATS]")
	for _, p := range view.Players {
		st := view.Stats[p.ID]
		fmt.Fprintf(&b, "\n%s: survived %d, died %d;", p.Name, st.SurvivedCount, st.DiedCount)
	}
	return b.String()
}

type decision int

const (
	decisionUnknown decision = iota
	decisionContinue
	decisionStop
)

func parseDecision(text string) decision {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y":
		return decisionContinue
	case "no", "n":
		return decisionStop
	}
	return decisionUnknown
}

package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// clientMessage is one action from the human client.
type clientMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// serverMessage is an acknowledgement or a server push. RequestID is set
// only on acknowledgements.
type serverMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

type deployPayload struct {
	CardUID      string `json:"cardUid"`
	MissionIndex int    `json:"missionIndex"`
	GroupIndex   int    `json:"groupIndex"`
}

type cardPayload struct {
	CardUID string `json:"cardUid"`
}

type moveShipPayload struct {
	ShipUID string `json:"shipUid"`
	ToIndex int    `json:"toIndex"`
}

type beamPayload struct {
	PersonUID    string `json:"personUid,omitempty"`
	MissionIndex int    `json:"missionIndex"`
	ShipGroup    int    `json:"shipGroup"`
}

type attemptPayload struct {
	MissionIndex int `json:"missionIndex"`
	GroupIndex   int `json:"groupIndex"`
}

type selectPersonnelPayload struct {
	PersonUID string `json:"personUid"`
}

type abilityPayload struct {
	CardUID   string `json:"cardUid"`
	AbilityID string `json:"abilityId"`
}

type selectDilemmasPayload struct {
	PoolUIDs    []string `json:"poolUids"`
	BeneathUIDs []string `json:"beneathUids"`
}

// handleMessage dispatches one client action and acknowledges it.
func (s *Server) handleMessage(c *client, msg clientMessage) {
	s.logger.Debug("action received",
		zap.String("type", msg.Type),
		zap.String("requestId", msg.RequestID))

	err := s.dispatch(c, msg)
	ack := serverMessage{Type: msg.Type, RequestID: msg.RequestID, Success: err == nil}
	if err != nil {
		ack.Reason = err.Error()
	}
	c.reply(ack)
}

func (s *Server) dispatch(c *client, msg clientMessage) error {
	player := c.playerID
	switch msg.Type {
	case "SETUP_GAME":
		return s.match.Setup(s.decks.Human, s.decks.AI)
	case "RESET_GAME":
		return s.match.Reset()
	case "DRAW":
		return s.match.Draw(player)
	case "DEPLOY":
		var p deployPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad DEPLOY payload: %w", err)
		}
		return s.match.Deploy(player, p.CardUID, p.MissionIndex, p.GroupIndex)
	case "DISCARD_CARD":
		var p cardPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad DISCARD_CARD payload: %w", err)
		}
		return s.match.DiscardCard(player, p.CardUID)
	case "NEXT_PHASE":
		return s.match.NextPhase(player)
	case "MOVE_SHIP":
		var p moveShipPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad MOVE_SHIP payload: %w", err)
		}
		return s.match.MoveShip(player, p.ShipUID, p.ToIndex)
	case "BEAM_TO_SHIP":
		var p beamPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad BEAM_TO_SHIP payload: %w", err)
		}
		return s.match.BeamToShip(player, p.PersonUID, p.MissionIndex, p.ShipGroup)
	case "BEAM_TO_PLANET":
		var p beamPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad BEAM_TO_PLANET payload: %w", err)
		}
		return s.match.BeamToPlanet(player, p.PersonUID, p.MissionIndex, p.ShipGroup)
	case "BEAM_ALL_TO_SHIP":
		var p beamPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad BEAM_ALL_TO_SHIP payload: %w", err)
		}
		return s.match.BeamAllToShip(player, p.MissionIndex, p.ShipGroup)
	case "BEAM_ALL_TO_PLANET":
		var p beamPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad BEAM_ALL_TO_PLANET payload: %w", err)
		}
		return s.match.BeamAllToPlanet(player, p.MissionIndex, p.ShipGroup)
	case "ATTEMPT_MISSION":
		var p attemptPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad ATTEMPT_MISSION payload: %w", err)
		}
		return s.match.AttemptMission(player, p.MissionIndex, p.GroupIndex)
	case "SELECT_PERSONNEL_FOR_DILEMMA":
		var p selectPersonnelPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad SELECT_PERSONNEL_FOR_DILEMMA payload: %w", err)
		}
		return s.match.SelectPersonnelForDilemma(player, p.PersonUID)
	case "ADVANCE_DILEMMA":
		return s.match.AdvanceDilemma(player)
	case "CLEAR_ENCOUNTER":
		return s.match.ClearEncounter(player)
	case "EXECUTE_ORDER_ABILITY":
		var p abilityPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad EXECUTE_ORDER_ABILITY payload: %w", err)
		}
		return s.match.ExecuteOrderAbility(player, p.CardUID, p.AbilityID)
	case "EXECUTE_INTERLINK_ABILITY":
		var p abilityPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad EXECUTE_INTERLINK_ABILITY payload: %w", err)
		}
		return s.match.ExecuteInterlinkAbility(player, p.CardUID, p.AbilityID)
	case "PLAY_INTERRUPT":
		var p abilityPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad PLAY_INTERRUPT payload: %w", err)
		}
		return s.match.PlayInterrupt(player, p.CardUID, p.AbilityID)
	case "PLAY_EVENT":
		var p cardPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad PLAY_EVENT payload: %w", err)
		}
		return s.match.PlayEvent(player, p.CardUID)
	case "SELECT_DILEMMAS":
		var p selectDilemmasPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("bad SELECT_DILEMMAS payload: %w", err)
		}
		return s.match.SubmitDilemmaSelection(player, p.PoolUIDs, p.BeneathUIDs)
	case "GET_STATE":
		view, err := s.match.View(player)
		if err != nil {
			return err
		}
		c.reply(serverMessage{Type: "STATE", Success: true, Payload: view})
		return nil
	}
	return fmt.Errorf("unknown action type %q", msg.Type)
}

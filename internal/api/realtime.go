package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmavtt/tabletop-core/internal/dice"
	"github.com/dmavtt/tabletop-core/internal/scene"
)

// drawingCreatedPayload is the inbound payload for drawing_created.
type drawingCreatedPayload struct {
	LayerID     int64             `json:"layer_id"`
	Type        scene.DrawingType `json:"type"`
	Points      []scene.Point     `json:"points"`
	Color       string            `json:"color"`
	StrokeWidth float64           `json:"stroke_width"`
}

// textCreatedPayload is the inbound payload for text_created.
type textCreatedPayload struct {
	LayerID  int64           `json:"layer_id"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Text     string          `json:"text"`
	FontSize int             `json:"font_size"`
	Color    string          `json:"color"`
	Style    scene.TextStyle `json:"style"`
}

// diceRollPayload is the inbound payload for dice_roll.
type diceRollPayload struct {
	Formula       string `json:"formula"`
	FormulaID     *int64 `json:"formula_id"`
	CharacterName string `json:"character_name"`
}

// handleTokenMoved persists a token move and relays it to every other
// client. An unknown token id produces an error message back to the
// originator; nothing is broadcast.
func (s *Server) handleTokenMoved(c *WSClient, msg WSMessage) {
	var move scene.TokenMove
	if err := json.Unmarshal(msg.Payload, &move); err != nil {
		c.sendError(msg.ID, "invalid token_moved payload")
		return
	}

	if err := s.scenes.MoveToken(context.Background(), move); err != nil {
		if errors.Is(err, scene.ErrTokenNotFound) {
			c.sendError(msg.ID, "unknown token id")
			return
		}
		s.logger.Error("token move failed", "token_id", move.TokenID, "error", err)
		c.sendError(msg.ID, "token move failed")
		return
	}

	s.hub.BroadcastExcept(c, EventTokenMoved, move)
}

// handleDrawingCreated persists a drawing, acks the originator with the
// assigned id, and relays the full drawing to every other client.
func (s *Server) handleDrawingCreated(c *WSClient, msg WSMessage) {
	var p drawingCreatedPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		c.sendError(msg.ID, "invalid drawing_created payload")
		return
	}
	if !scene.IsValidDrawingType(p.Type) {
		c.sendError(msg.ID, "unknown drawing type")
		return
	}
	if len(p.Points) == 0 {
		c.sendError(msg.ID, "drawing needs at least one point")
		return
	}
	if p.StrokeWidth <= 0 {
		p.StrokeWidth = 1
	}

	d := &scene.Drawing{
		LayerID:     p.LayerID,
		Type:        p.Type,
		Points:      p.Points,
		Color:       p.Color,
		StrokeWidth: p.StrokeWidth,
	}
	if err := s.scenes.CreateDrawing(context.Background(), d); err != nil {
		if errors.Is(err, scene.ErrLayerNotFound) {
			c.sendError(msg.ID, "unknown layer id")
			return
		}
		s.logger.Error("drawing create failed", "layer_id", p.LayerID, "error", err)
		c.sendError(msg.ID, "drawing create failed")
		return
	}

	c.sendResponse(msg.ID, WSTypeResponse, d)
	s.hub.BroadcastExcept(c, EventDrawingCreated, d)
}

// handleTextCreated persists a text element, acks the originator with the
// assigned id, and relays it to every other client.
func (s *Server) handleTextCreated(c *WSClient, msg WSMessage) {
	var p textCreatedPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		c.sendError(msg.ID, "invalid text_created payload")
		return
	}
	if p.Text == "" {
		c.sendError(msg.ID, "text is required")
		return
	}
	if p.Style == "" {
		p.Style = scene.StyleNormal
	}
	if !scene.IsValidTextStyle(p.Style) {
		c.sendError(msg.ID, "unknown text style")
		return
	}
	if p.FontSize <= 0 {
		p.FontSize = 12
	}
	if p.Color == "" {
		p.Color = "#000000"
	}

	te := &scene.TextElement{
		LayerID:  p.LayerID,
		X:        p.X,
		Y:        p.Y,
		Text:     p.Text,
		FontSize: p.FontSize,
		Color:    p.Color,
		Style:    p.Style,
	}
	if err := s.scenes.CreateText(context.Background(), te); err != nil {
		if errors.Is(err, scene.ErrLayerNotFound) {
			c.sendError(msg.ID, "unknown layer id")
			return
		}
		s.logger.Error("text create failed", "layer_id", p.LayerID, "error", err)
		c.sendError(msg.ID, "text create failed")
		return
	}

	c.sendResponse(msg.ID, WSTypeResponse, te)
	s.hub.BroadcastExcept(c, EventTextCreated, te)
}

// handleDiceRoll evaluates a formula, records it in the roll history, and
// broadcasts the result to every client, the roller included.
func (s *Server) handleDiceRoll(c *WSClient, msg WSMessage) {
	var p diceRollPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		c.sendError(msg.ID, "invalid dice_roll payload")
		return
	}

	formula := p.Formula
	if p.FormulaID != nil {
		saved, err := s.dice.GetFormula(context.Background(), *p.FormulaID)
		if err != nil {
			if errors.Is(err, dice.ErrFormulaNotFound) {
				c.sendError(msg.ID, "unknown formula id")
				return
			}
			s.logger.Error("formula lookup failed", "formula_id", *p.FormulaID, "error", err)
			c.sendError(msg.ID, "dice roll failed")
			return
		}
		formula = saved.Formula
	}

	result, err := dice.Roll(formula)
	if err != nil {
		c.sendError(msg.ID, "invalid dice formula")
		return
	}

	rawRolls, err := json.Marshal(result.Rolls)
	if err != nil {
		c.sendError(msg.ID, "dice roll failed")
		return
	}
	entry := &dice.LogEntry{
		UserID:         c.principal.UserID,
		CharacterName:  p.CharacterName,
		FormulaID:      p.FormulaID,
		RawFormula:     formula,
		RawResult:      string(rawRolls),
		ModifiedResult: result.Total,
	}
	if err := s.dice.LogRoll(context.Background(), entry); err != nil {
		s.logger.Error("dice log write failed", "user_id", entry.UserID, "error", err)
	}

	s.hub.Broadcast(EventDiceRolled, map[string]any{
		"log_id":         entry.ID,
		"user_id":        entry.UserID,
		"character_name": entry.CharacterName,
		"formula":        formula,
		"rolls":          result.Rolls,
		"total":          result.Total,
	})
}

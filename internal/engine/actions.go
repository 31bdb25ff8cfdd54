// internal/engine/actions.go
package engine

import (
	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/deck"
	"github.com/sil-vella/recall/internal/models"
)

// ActionKind is the closed set of inbound actions. Event name strings
// are parsed exactly once, at the boundary; everything past ParseAction
// switches on this enum.
type ActionKind int

const (
	ActionJoin ActionKind = iota
	ActionStartMatch
	ActionCompleteInitialPeek
	ActionDrawCard
	ActionPlayDrawnCard
	ActionReplaceDrawnCard
	ActionPlayCard
	ActionSameRankPlay
	ActionUseSpecialPower
	ActionSkipSpecialPower
	ActionCallRecall
	ActionGetState
)

// DrawSource selects which pile a draw takes from.
type DrawSource string

const (
	DrawDeck    DrawSource = "deck"
	DrawDiscard DrawSource = "discard"
)

// SwapTarget names one (player, card) pair for a jack swap or the
// target of a queen peek.
type SwapTarget struct {
	PlayerID string
	CardID   uuid.UUID
}

// MatchOptions carries the deck/hand configuration consumed only at
// match start.
type MatchOptions struct {
	TestingDeck     bool
	DeferPeekTimer  bool
	StakePerPlayer  int
	TargetSeats     int
	PredefinedHands [][]deck.CardSpec
}

// Action is one parsed inbound event. Only the fields relevant to Kind
// are populated.
type Action struct {
	Kind ActionKind
	Name string // original event name, echoed in the direct reply

	Source     DrawSource
	CardID     uuid.UUID
	CardIDs    []uuid.UUID
	HandCardID uuid.UUID
	PeekTarget SwapTarget
	SwapA      SwapTarget
	SwapB      SwapTarget
	Start      MatchOptions
}

// ParseAction converts an event name plus raw payload into a typed
// Action. Unknown events and malformed payloads come back as
// validation errors before any state is touched.
func ParseAction(event string, payload map[string]any) (Action, *Error) {
	act := Action{Name: event}
	switch event {
	case "join_game":
		act.Kind = ActionJoin
	case "start_match":
		act.Kind = ActionStartMatch
		act.Start = parseMatchOptions(payload)
	case "complete_initial_peek":
		act.Kind = ActionCompleteInitialPeek
		ids, err := payloadUUIDList(payload, "card_ids")
		if err != nil {
			return act, err
		}
		act.CardIDs = ids
	case "draw_card":
		act.Kind = ActionDrawCard
		src, _ := payloadString(payload, "source")
		switch DrawSource(src) {
		case DrawDeck, DrawDiscard:
			act.Source = DrawSource(src)
		default:
			return act, errValidation("draw source must be %q or %q", DrawDeck, DrawDiscard)
		}
	case "play_drawn_card":
		act.Kind = ActionPlayDrawnCard
	case "replace_drawn_card":
		act.Kind = ActionReplaceDrawnCard
		id, err := payloadUUID(payload, "hand_card_id")
		if err != nil {
			return act, err
		}
		act.HandCardID = id
	case "play_card":
		act.Kind = ActionPlayCard
		id, err := payloadUUID(payload, "card_id")
		if err != nil {
			return act, err
		}
		act.CardID = id
	case "same_rank_play":
		act.Kind = ActionSameRankPlay
		id, err := payloadUUID(payload, "card_id")
		if err != nil {
			return act, err
		}
		act.CardID = id
	case "use_special_power":
		act.Kind = ActionUseSpecialPower
		if err := parsePowerTargets(&act, payload); err != nil {
			return act, err
		}
	case "skip_special_power":
		act.Kind = ActionSkipSpecialPower
	case "call_recall":
		act.Kind = ActionCallRecall
	case "get_game_state":
		act.Kind = ActionGetState
	default:
		return act, errValidation("unknown event %q", event)
	}
	return act, nil
}

// parsePowerTargets accepts either a single peek target
// (target_player_id + card_id) or two swap pairs (first/second).
func parsePowerTargets(act *Action, payload map[string]any) *Error {
	if first, ok := payload["first"].(map[string]any); ok {
		second, ok := payload["second"].(map[string]any)
		if !ok {
			return errValidation("swap power requires both first and second targets")
		}
		a, err := parseSwapTarget(first)
		if err != nil {
			return err
		}
		b, err := parseSwapTarget(second)
		if err != nil {
			return err
		}
		act.SwapA, act.SwapB = a, b
		return nil
	}

	pid, _ := payloadString(payload, "target_player_id")
	if pid == "" {
		return errValidation("power payload needs target_player_id or first/second pairs")
	}
	cid, err := payloadUUID(payload, "card_id")
	if err != nil {
		return err
	}
	act.PeekTarget = SwapTarget{PlayerID: pid, CardID: cid}
	return nil
}

func parseSwapTarget(m map[string]any) (SwapTarget, *Error) {
	pid, _ := payloadString(m, "player_id")
	if pid == "" {
		return SwapTarget{}, errValidation("swap target missing player_id")
	}
	cid, err := payloadUUID(m, "card_id")
	if err != nil {
		return SwapTarget{}, err
	}
	return SwapTarget{PlayerID: pid, CardID: cid}, nil
}

func parseMatchOptions(payload map[string]any) MatchOptions {
	opts := MatchOptions{}
	if v, ok := payload["testing"].(bool); ok {
		opts.TestingDeck = v
	}
	if v, ok := payload["defer_peek_timer"].(bool); ok {
		opts.DeferPeekTimer = v
	}
	if v, ok := payload["stake_per_player"].(float64); ok {
		opts.StakePerPlayer = int(v)
	}
	if v, ok := payload["target_seats"].(float64); ok {
		opts.TargetSeats = int(v)
	}
	if raw, ok := payload["predefined_hands"].([]any); ok {
		for _, seatRaw := range raw {
			specs, ok := seatRaw.([]any)
			if !ok {
				continue
			}
			seat := make([]deck.CardSpec, 0, len(specs))
			for _, specRaw := range specs {
				m, ok := specRaw.(map[string]any)
				if !ok {
					continue
				}
				rank, _ := payloadString(m, "rank")
				suit, _ := payloadString(m, "suit")
				seat = append(seat, deck.CardSpec{Rank: models.Rank(rank), Suit: models.Suit(suit)})
			}
			opts.PredefinedHands = append(opts.PredefinedHands, seat)
		}
	}
	return opts
}

func payloadString(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key].(string)
	return v, ok
}

func payloadUUID(payload map[string]any, key string) (uuid.UUID, *Error) {
	s, ok := payloadString(payload, key)
	if !ok || s == "" {
		return uuid.Nil, errValidation("missing %s", key)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errValidation("invalid %s: %v", key, err)
	}
	return id, nil
}

func payloadUUIDList(payload map[string]any, key string) ([]uuid.UUID, *Error) {
	raw, ok := payload[key].([]any)
	if !ok {
		return nil, errValidation("missing %s", key)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, errValidation("%s entries must be strings", key)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errValidation("invalid card id in %s: %v", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
